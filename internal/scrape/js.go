package scrape

// harvestJS runs inside the page and does the DOM-bound half of discovery:
// candidate enumeration (including open shadow roots), visibility checks,
// canonical resolution, signal harvesting, generic type detection, embedded
// option collection, and locator-bundle synthesis with per-expression
// uniqueness validation.
//
// It returns a JSON string; element handles never cross the boundary.
// Canonical elements are parked in window.__ffReg and referenced by index,
// so the Go side can re-acquire live handles for the same pass.
//
// The script takes the detected platform tag as its argument; the only
// platform-specific part is the sibling-label lookup.
const harvestJS = `(platform) => {
	const NATIVE_TAGS = ['INPUT', 'TEXTAREA', 'SELECT'];
	const INTERACTIVE_ROLES = ['combobox', 'listbox', 'textbox', 'checkbox', 'radio', 'switch', 'spinbutton'];
	const RICH_SELECTOR = '[contenteditable="true"],[contenteditable=""],.ql-editor,.ProseMirror,trix-editor';

	const attrEsc = (v) => String(v).replace(/\\/g, '\\\\').replace(/"/g, '\\"');
	const txt = (el) => el ? (el.textContent || '').replace(/\s+/g, ' ').trim() : '';

	function collectRoots(root, acc) {
		acc.push(root);
		const walker = root.querySelectorAll ? root.querySelectorAll('*') : [];
		for (const el of walker) {
			if (el.shadowRoot) collectRoots(el.shadowRoot, acc);
		}
		return acc;
	}

	function isVisible(el) {
		if (!el.isConnected) return false;
		if (el.closest && (el.closest('[aria-hidden="true"]') || el.closest('[hidden]'))) return false;
		const isFile = el.tagName === 'INPUT' && el.type === 'file';
		let n = el;
		while (n && n.nodeType === 1) {
			const cs = getComputedStyle(n);
			if (cs.display === 'none') return false;
			if (n === el && cs.visibility === 'hidden' && !isFile) return false;
			n = n.parentElement || (n.getRootNode() instanceof ShadowRoot ? n.getRootNode().host : null);
		}
		if (isFile) return !el.disabled;
		const r = el.getBoundingClientRect();
		if (r.width === 0 && r.height === 0) {
			const cs = getComputedStyle(el);
			if (cs.position !== 'absolute' && cs.position !== 'fixed') return false;
		}
		return true;
	}

	function isRich(el) {
		return el.isContentEditable === true || (el.matches && el.matches(RICH_SELECTOR));
	}

	function resolveCanonical(el) {
		if (NATIVE_TAGS.includes(el.tagName) || isRich(el)) return el;
		const inner = el.querySelector
			? el.querySelector('input,textarea,select,' + RICH_SELECTOR)
			: null;
		if (inner) return inner;
		const role = el.getAttribute ? el.getAttribute('role') : null;
		if (role && INTERACTIVE_ROLES.includes(role)) return el;
		return null;
	}

	function genericType(el, wrapper) {
		if (isRich(el)) return 'richtext';
		const tag = el.tagName;
		const itype = (el.getAttribute('type') || '').toLowerCase();
		const role = el.getAttribute('role') || (wrapper && wrapper.getAttribute ? wrapper.getAttribute('role') : '') || '';
		if (tag === 'INPUT' && itype === 'file') return 'file';
		if (tag === 'INPUT' && (itype === 'date' || itype === 'month' || itype === 'week')) return 'date';
		if (tag === 'INPUT' && itype === 'checkbox') return 'checkbox';
		if (role === 'checkbox' || role === 'switch') return 'checkbox';
		if (tag === 'INPUT' && itype === 'radio') return 'radio';
		if (role === 'radio') return 'radio';
		if (tag === 'SELECT') return el.multiple ? 'multiselect' : 'select';
		if (role === 'combobox' || role === 'listbox') {
			const multi = el.getAttribute('aria-multiselectable') === 'true' ||
				(wrapper && wrapper.getAttribute && wrapper.getAttribute('aria-multiselectable') === 'true');
			return multi ? 'multiselect' : 'select';
		}
		const cls = (el.className && typeof el.className === 'string' ? el.className : '') + ' ' +
			(wrapper && typeof wrapper.className === 'string' ? wrapper.className : '');
		if (/select__|select2|chosen-container|dropdown-toggle/i.test(cls)) return 'select';
		if (tag === 'TEXTAREA') return 'textarea';
		return 'text';
	}

	function labelledByText(el) {
		const ids = el.getAttribute('aria-labelledby');
		if (!ids) return '';
		return ids.split(/\s+/).map(id => txt(document.getElementById(id))).filter(Boolean).join(' ');
	}

	function enclosingLabelText(el) {
		const lab = el.closest ? el.closest('label') : null;
		if (!lab) return '';
		const clone = lab.cloneNode(true);
		for (const junk of clone.querySelectorAll('input,textarea,select,button,option')) junk.remove();
		return (clone.textContent || '').replace(/\s+/g, ' ').trim();
	}

	function siblingLabelText(el, wrapper) {
		if (platform === 'lever') {
			const fieldLi = (wrapper || el).closest('.application-field, li');
			if (fieldLi) {
				const container = fieldLi.closest('.application-question') || fieldLi.parentElement;
				const lab = container ? container.querySelector('.application-label') : null;
				if (lab) return txt(lab);
			}
		}
		if (platform === 'greenhouse') {
			const fieldDiv = (wrapper || el).closest('.field, .input-wrapper');
			if (fieldDiv) {
				const lab = fieldDiv.querySelector('label');
				if (lab && !lab.contains(el)) return txt(lab);
			}
		}
		return '';
	}

	function questionLabelText(el, wrapper) {
		const q = (wrapper || el).closest('[class*="question"],[data-qa*="question"],.form-group,.field,fieldset');
		if (!q) return '';
		const lab = q.querySelector('label, legend, [class*="label"]');
		if (lab && !lab.contains(el)) return txt(lab);
		return '';
	}

	function precedingText(el, wrapper) {
		let n = (wrapper || el).previousElementSibling;
		for (let hops = 0; n && hops < 3; hops++, n = n.previousElementSibling) {
			if (n.matches('input,textarea,select,button')) break;
			const s = txt(n);
			if (s && s.length <= 120) return s;
		}
		return '';
	}

	function headingText(el) {
		const section = el.closest ? el.closest('section,form,[class*="section"]') : null;
		if (!section) return '';
		const h = section.querySelector('h1,h2,h3,h4');
		return h && !h.contains(el) ? txt(h) : '';
	}

	function automationID(el, wrapper) {
		for (const node of [el, wrapper]) {
			if (!node || !node.getAttribute) continue;
			for (const a of ['data-automation-id', 'data-testid', 'data-test-id', 'data-qa']) {
				const v = node.getAttribute(a);
				if (v) return v;
			}
		}
		return '';
	}

	function collectSignals(el, wrapper) {
		const forLabel = el.id
			? txt(document.querySelector('label[for="' + CSS.escape(el.id) + '"]'))
			: '';
		const fieldset = el.closest ? el.closest('fieldset') : null;
		return {
			labelledBy: labelledByText(el) || (wrapper && wrapper.getAttribute ? labelledByText(wrapper) : ''),
			explicitLabel: forLabel,
			ariaLabel: el.getAttribute('aria-label') || (wrapper && wrapper.getAttribute ? wrapper.getAttribute('aria-label') : '') || '',
			enclosingLabel: enclosingLabelText(el),
			siblingLabel: siblingLabelText(el, wrapper),
			automationId: automationID(el, wrapper),
			questionLabel: questionLabelText(el, wrapper),
			placeholder: el.getAttribute('placeholder') || '',
			name: el.getAttribute('name') || (el.getAttribute && el.getAttribute('data-field')) || '',
			dataLabel: el.getAttribute('data-label') || el.getAttribute('data-field-label') || '',
			precedingText: precedingText(el, wrapper),
			legend: fieldset ? txt(fieldset.querySelector('legend')) : '',
			heading: headingText(el),
			title: el.getAttribute('title') || '',
			id: el.id || ''
		};
	}

	function embeddedOptions(el, wrapper) {
		if (el.tagName === 'SELECT') {
			return Array.from(el.options).map(o => (o.textContent || '').trim()).filter(Boolean);
		}
		const out = [];
		const ids = (el.getAttribute('aria-controls') || el.getAttribute('aria-owns') ||
			(wrapper && wrapper.getAttribute ? (wrapper.getAttribute('aria-controls') || wrapper.getAttribute('aria-owns')) : '') || '');
		for (const id of ids.split(/\s+/).filter(Boolean)) {
			const box = document.getElementById(id);
			if (!box) continue;
			for (const o of box.querySelectorAll('[role="option"],option,li')) {
				const s = txt(o);
				if (s) out.push(s);
			}
		}
		if (out.length === 0) {
			const scope = wrapper || el;
			if (scope.querySelectorAll) {
				for (const o of scope.querySelectorAll('[role="option"]')) {
					const s = txt(o);
					if (s) out.push(s);
				}
			}
		}
		return out;
	}

	function radioValue(el) {
		if (el.tagName === 'INPUT' && el.type === 'radio') return el.value || '';
		return el.getAttribute('data-value') || el.getAttribute('value') || '';
	}

	function uniqueIn(rootNode, expr) {
		try {
			return rootNode.querySelectorAll(expr).length === 1;
		} catch (e) {
			return false;
		}
	}

	function pathSegment(el) {
		const tag = el.tagName.toLowerCase();
		for (const a of ['data-automation-id', 'data-testid', 'name']) {
			const v = el.getAttribute && el.getAttribute(a);
			if (v) return tag + '[' + a + '="' + attrEsc(v) + '"]';
		}
		if (el.id) return '#' + CSS.escape(el.id);
		const parent = el.parentElement;
		if (!parent) return tag;
		let idx = 1;
		for (let sib = el.previousElementSibling; sib; sib = sib.previousElementSibling) {
			if (sib.tagName === el.tagName) idx++;
		}
		return tag + ':nth-of-type(' + idx + ')';
	}

	function buildLocators(el, wrapper) {
		const doc = el.getRootNode();
		const out = [];
		const push = (kind, expr) => {
			if (expr && uniqueIn(doc, expr)) out.push({ kind, expr });
		};

		if (el.id) push('id', '#' + CSS.escape(el.id));

		const auto = automationID(el, null);
		if (auto) {
			for (const a of ['data-automation-id', 'data-testid', 'data-test-id', 'data-qa']) {
				if (el.getAttribute(a) === auto) {
					push('automation_id', '[' + a + '="' + attrEsc(auto) + '"]');
					break;
				}
			}
		}

		const aria = el.getAttribute('aria-label');
		if (aria) push('aria_label', el.tagName.toLowerCase() + '[aria-label="' + attrEsc(aria) + '"]');

		const name = el.getAttribute('name');
		if (name) {
			const form = el.closest('form');
			const scope = form && form.id ? '#' + CSS.escape(form.id) + ' ' : 'form ';
			push('form_name', scope + '[name="' + attrEsc(name) + '"]');
			if (out.length === 0 || !out.some(l => l.kind === 'form_name')) {
				push('form_name', '[name="' + attrEsc(name) + '"]');
			}
		}

		let anc = (wrapper || el).parentElement;
		for (let hops = 0; anc && hops < 4; hops++, anc = anc.parentElement) {
			if (anc.id) {
				push('wrapper_scope', '#' + CSS.escape(anc.id) + ' ' + el.tagName.toLowerCase());
				break;
			}
		}

		// Synthesized ancestor path, depth-capped; attribute-anchored
		// segments beat positional ones, so stop climbing at the first
		// anchored ancestor.
		const segs = [pathSegment(el)];
		let n = el.parentElement;
		for (let depth = 0; n && n.tagName !== 'BODY' && n.tagName !== 'HTML' && depth < 6; depth++) {
			segs.unshift(pathSegment(n));
			if (segs[0][0] === '#' || segs[0].includes('[')) break;
			n = n.parentElement;
		}
		push('ancestor_path', segs.join(' > '));

		return out;
	}

	// --- main walk ---

	window.__ffReg = [];
	const seen = new Set();
	const results = [];
	const roots = collectRoots(document, []);

	const CANDIDATE_SELECTOR = [
		'input', 'textarea', 'select',
		'[contenteditable="true"]', '[contenteditable=""]',
		'.ql-editor', '.ProseMirror', 'trix-editor',
		'[role="combobox"]', '[role="listbox"]', '[role="textbox"]',
		'[role="checkbox"]', '[role="radio"]', '[role="switch"]', '[role="spinbutton"]'
	].join(',');

	for (const root of roots) {
		for (const node of root.querySelectorAll(CANDIDATE_SELECTOR)) {
			if (node.tagName === 'INPUT') {
				const t = (node.getAttribute('type') || 'text').toLowerCase();
				if (['hidden', 'submit', 'button', 'reset', 'image'].includes(t)) continue;
			}
			const canon = resolveCanonical(node);
			if (!canon || seen.has(canon)) continue;
			if (!isVisible(canon) && !isVisible(node)) continue;
			seen.add(canon);

			const wrapper = canon === node ? null : node;
			const type = genericType(canon, wrapper);
			const opts = embeddedOptions(canon, wrapper);
			const ref = window.__ffReg.push(canon) - 1;

			results.push({
				ref: ref,
				signals: collectSignals(canon, wrapper),
				name: canon.getAttribute('name') || '',
				id: canon.id || '',
				placeholder: canon.getAttribute('placeholder') || '',
				required: canon.required === true || canon.getAttribute('aria-required') === 'true',
				disabled: canon.disabled === true || canon.getAttribute('aria-disabled') === 'true',
				type: type,
				autocomplete: canon.getAttribute('autocomplete') || '',
				options: opts,
				radioValue: radioValue(canon),
				constraints: {
					max_length: canon.maxLength > 0 ? canon.maxLength : 0,
					min: canon.getAttribute('min') || '',
					max: canon.getAttribute('max') || '',
					pattern: canon.getAttribute('pattern') || '',
					accept: canon.getAttribute('accept') || ''
				},
				locators: buildLocators(canon, wrapper)
			});
		}
	}

	return JSON.stringify(results);
}`
