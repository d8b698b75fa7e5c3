package browser

// DeepSearchJS declares deepSearch(root, selector) for use inside evaluated
// functions. It checks root first, then descends into each shadow root in
// document order.
const DeepSearchJS = `
	const deepSearch = (root, selector) => {
		const hit = root.querySelector(selector);
		if (hit) return hit;
		for (const el of root.querySelectorAll('*')) {
			if (el.shadowRoot) {
				const found = deepSearch(el.shadowRoot, selector);
				if (found) return found;
			}
		}
		return null;
	};
`

const (
	deepFindJS   = `(selector) => {` + DeepSearchJS + `return deepSearch(document, selector); }`
	deepExistsJS = `(selector) => {` + DeepSearchJS + `return deepSearch(document, selector) !== null; }`
)
