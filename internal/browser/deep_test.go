package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepScriptsAreFunctions(t *testing.T) {
	for _, js := range []string{deepFindJS, deepExistsJS} {
		assert.True(t, strings.HasPrefix(js, "(selector) => {"))
		assert.True(t, strings.HasSuffix(js, "}"))
		assert.Contains(t, js, "el.shadowRoot")
		assert.Contains(t, js, "deepSearch(document, selector)")
	}
	assert.Contains(t, deepExistsJS, "!== null")
}

func TestTimeoutErrors(t *testing.T) {
	assert.EqualError(t, navigationTimeout(60e9), "navigation timeout of 60000 ms exceeded: context deadline exceeded")
	assert.Contains(t, waitTimeout("selector `a`", 10e9, assert.AnError).Error(), "timeout 10000ms exceeded")
}
