package fill

// In-page halves of the fill strategies. Each snippet runs with `this`
// bound to the target element and reports back whether its post-condition
// holds; the Go side owns matching, retries, and error classification.

// typeTextJS clears the control and types the value one character at a
// time through the native value setter. Before every input event the
// framework's internal change-tracking snapshot (React's _valueTracker) is
// reset to the prior substring — frameworks diff the DOM value against that
// cache and swallow the event when the two agree, so the reset is what
// makes the keystroke observable. Inter-character delays are randomized
// within the given bounds.
const typeTextJS = `async (value, minDelay, maxDelay) => {
	const el = this;
	const sleep = (ms) => new Promise(r => setTimeout(r, ms));
	const jitter = () => minDelay + Math.random() * (maxDelay - minDelay);

	el.scrollIntoView({ block: 'center', inline: 'nearest' });
	el.focus();
	el.dispatchEvent(new FocusEvent('focus', { bubbles: true }));

	const proto = el.tagName === 'TEXTAREA'
		? HTMLTextAreaElement.prototype
		: HTMLInputElement.prototype;
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	const setValue = desc ? desc.set.bind(el) : (v) => { el.value = v; };
	const resetTracker = (prev) => {
		if (el._valueTracker) el._valueTracker.setValue(prev);
	};

	const before = el.value;
	if (before !== '') {
		setValue('');
		resetTracker(before);
		el.dispatchEvent(new InputEvent('input', { bubbles: true, inputType: 'deleteContentBackward' }));
		await sleep(jitter());
	}

	for (let i = 0; i < value.length; i++) {
		const prev = value.slice(0, i);
		setValue(value.slice(0, i + 1));
		resetTracker(prev);
		el.dispatchEvent(new InputEvent('input', {
			bubbles: true, inputType: 'insertText', data: value[i]
		}));
		await sleep(jitter());
	}

	el.dispatchEvent(new Event('change', { bubbles: true }));
	el.dispatchEvent(new FocusEvent('blur', { bubbles: true }));
	el.blur();

	return el.value === value;
}`

// richTextJS fills a contenteditable editor: focus, clear through the
// selection API, then append character by character with an input event
// each, which is how editors like Quill and ProseMirror expect content to
// arrive.
const richTextJS = `async (value, minDelay, maxDelay) => {
	const el = this;
	const sleep = (ms) => new Promise(r => setTimeout(r, ms));
	const jitter = () => minDelay + Math.random() * (maxDelay - minDelay);

	el.scrollIntoView({ block: 'center' });
	el.focus();

	const sel = window.getSelection();
	const range = document.createRange();
	range.selectNodeContents(el);
	sel.removeAllRanges();
	sel.addRange(range);
	document.execCommand('delete', false, null);

	for (const ch of value) {
		if (!document.execCommand('insertText', false, ch)) {
			el.appendChild(document.createTextNode(ch));
		}
		el.dispatchEvent(new InputEvent('input', { bubbles: true, inputType: 'insertText', data: ch }));
		await sleep(jitter());
	}

	el.dispatchEvent(new Event('change', { bubbles: true }));
	el.blur();

	return (el.textContent || '').includes(value);
}`

// readSelectOptionsJS reads the current option texts of a native select,
// fresh from the DOM rather than from the (possibly stale) descriptor.
const readSelectOptionsJS = `() => JSON.stringify(Array.from(this.options).map(o => (o.textContent || '').trim()))`

// setSelectIndexJS selects an option by index through the native setter,
// resets change tracking, and fires the realistic event tail.
const setSelectIndexJS = `(idx) => {
	const el = this;
	el.scrollIntoView({ block: 'center' });
	el.focus();
	const desc = Object.getOwnPropertyDescriptor(HTMLSelectElement.prototype, 'value');
	const prev = el.value;
	desc.set.call(el, el.options[idx].value);
	if (el._valueTracker) el._valueTracker.setValue(prev);
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	el.blur();
	return el.selectedIndex === idx;
}`

// selectMultiOptionJS additionally selects one option of a native multiple
// select without clearing earlier selections.
const selectMultiOptionJS = `(idx) => {
	const el = this;
	el.options[idx].selected = true;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return el.options[idx].selected;
}`

// checkboxStateJS reads the effective checked state of a native checkbox or
// an ARIA checkbox/switch.
const checkboxStateJS = `() => {
	if (this.tagName === 'INPUT') return this.checked === true;
	return this.getAttribute('aria-checked') === 'true';
}`

// clickJS performs a realistic click burst in place.
const clickJS = `() => {
	this.scrollIntoView({ block: 'center' });
	for (const type of ['pointerdown', 'mousedown', 'pointerup', 'mouseup', 'click']) {
		this.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
	}
}`

// radioInfoJS reads the radio candidate's own value and visible label text.
const radioInfoJS = `() => JSON.stringify({
	value: this.tagName === 'INPUT' ? (this.value || '') : (this.getAttribute('data-value') || this.getAttribute('value') || ''),
	label: (() => {
		const lab = this.closest('label');
		if (lab) return (lab.textContent || '').replace(/\s+/g, ' ').trim();
		if (this.id) {
			const ext = document.querySelector('label[for="' + CSS.escape(this.id) + '"]');
			if (ext) return (ext.textContent || '').replace(/\s+/g, ' ').trim();
		}
		return '';
	})()
})`

// isCheckedJS verifies a radio/checkbox took the click.
const isCheckedJS = `() => this.tagName === 'INPUT' ? this.checked === true : this.getAttribute('aria-checked') === 'true'`

// dateProbeJS classifies how the date control wants its value: a native
// date input, a year-only field, a split section group (day/month/year as
// sibling inputs inside the same wrapper), or a single free-text field.
const dateProbeJS = `() => {
	const el = this;
	const t = (el.getAttribute('type') || '').toLowerCase();
	if (el.tagName === 'INPUT' && (t === 'date' || t === 'month')) return 'native';

	const hint = ((el.getAttribute('aria-label') || '') + ' ' +
		(el.getAttribute('placeholder') || '') + ' ' +
		(el.getAttribute('data-automation-id') || '')).toLowerCase();
	if (/\byear\b|yyyy/.test(hint) && !/month|day|mm|dd/.test(hint)) return 'year';

	const wrap = el.closest('[data-automation-id*="date"], .date-input, [class*="date"]');
	if (wrap) {
		const sections = wrap.querySelectorAll('input,[role="spinbutton"]');
		if (sections.length >= 3) return 'split';
	}
	return 'single';
}`

// setNativeDateJS assigns an ISO date to a native date input.
const setNativeDateJS = `(iso) => {
	const el = this;
	const desc = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value');
	const prev = el.value;
	desc.set.call(el, iso);
	if (el._valueTracker) el._valueTracker.setValue(prev);
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return el.value === iso;
}`

// fillDateSectionsJS types day/month/year into the split sections of the
// control's wrapper, matching each section by its own hints.
const fillDateSectionsJS = `(month, day, year) => {
	const el = this;
	const wrap = el.closest('[data-automation-id*="date"], .date-input, [class*="date"]');
	if (!wrap) return false;
	const sections = wrap.querySelectorAll('input,[role="spinbutton"]');
	let done = 0;
	for (const s of sections) {
		const hint = ((s.getAttribute('aria-label') || '') + ' ' +
			(s.getAttribute('placeholder') || '') + ' ' +
			(s.getAttribute('data-automation-id') || '')).toLowerCase();
		let v = '';
		if (/year|yyyy/.test(hint)) v = String(year);
		else if (/month|\bmm\b/.test(hint)) v = String(month).padStart(2, '0');
		else if (/day|\bdd\b/.test(hint)) v = String(day).padStart(2, '0');
		if (!v) continue;
		const desc = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value');
		if (s.tagName === 'INPUT' && desc) {
			const prev = s.value;
			desc.set.call(s, v);
			if (s._valueTracker) s._valueTracker.setValue(prev);
		} else {
			s.textContent = v;
		}
		s.dispatchEvent(new Event('input', { bubbles: true }));
		s.dispatchEvent(new Event('change', { bubbles: true }));
		done++;
	}
	return done >= 2;
}`

// fileCountJS reports how many files the input currently holds.
const fileCountJS = `() => this.files ? this.files.length : 0`

// dropFileJS synthesizes a drag-and-drop of a constructed file onto the
// nearest dropzone-like ancestor (or the input itself). Used when the
// native file-list setter leaves the list empty, which happens with
// dropzone widgets that hide the real input.
const dropFileJS = `(name, mime, b64) => {
	const el = this;
	const zone = el.closest('[class*="dropzone"],[class*="drop-zone"],[class*="upload"],[data-automation-id*="file"]') || el;

	const bytes = Uint8Array.from(atob(b64), c => c.charCodeAt(0));
	const file = new File([bytes], name, { type: mime });
	const dt = new DataTransfer();
	dt.items.add(file);

	for (const type of ['dragenter', 'dragover', 'drop']) {
		const ev = new DragEvent(type, { bubbles: true, cancelable: true });
		Object.defineProperty(ev, 'dataTransfer', { value: dt });
		zone.dispatchEvent(ev);
	}
	try {
		el.files = dt.files;
		el.dispatchEvent(new Event('change', { bubbles: true }));
	} catch (e) { /* some inputs reject programmatic assignment */ }
	return el.files ? el.files.length > 0 : true;
}`

// flagFailedJS marks a failed field visually so the user can finish it by
// hand.
const flagFailedJS = `() => {
	this.style.outline = '2px solid #d93025';
	this.style.outlineOffset = '1px';
}`

// isConnectedJS checks a live handle survived re-renders.
const isConnectedJS = `() => this.isConnected === true`

// isDisabledJS checks the control refuses input.
const isDisabledJS = `() => this.disabled === true || this.getAttribute('aria-disabled') === 'true'`

// typeSearchPrefixJS types a short prefix into a searchable combobox to
// filter its option list. Only used when the trigger is genuinely
// editable.
const typeSearchPrefixJS = `async (prefix, delay) => {
	const el = this;
	const sleep = (ms) => new Promise(r => setTimeout(r, ms));
	const target = el.tagName === 'INPUT' || el.tagName === 'TEXTAREA'
		? el
		: el.querySelector('input:not([type="hidden"])');
	if (!target) return false;
	target.focus();
	const desc = Object.getOwnPropertyDescriptor(
		target.tagName === 'TEXTAREA' ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype, 'value');
	for (let i = 0; i < prefix.length; i++) {
		const prev = prefix.slice(0, i);
		desc.set.call(target, prefix.slice(0, i + 1));
		if (target._valueTracker) target._valueTracker.setValue(prev);
		target.dispatchEvent(new InputEvent('input', { bubbles: true, inputType: 'insertText', data: prefix[i] }));
		await sleep(delay);
	}
	return true;
}`

// isSearchableJS reports whether the combobox trigger accepts typed text.
const isSearchableJS = `() => {
	const el = this;
	if ((el.tagName === 'INPUT' || el.tagName === 'TEXTAREA') && !el.readOnly) return true;
	const inner = el.querySelector ? el.querySelector('input:not([type="hidden"])') : null;
	return !!(inner && !inner.readOnly);
}`

// freeTextAfterOtherJS finds the free-text input that appears after picking
// an "Other / Not listed" option in an institution or employer picker.
const freeTextAfterOtherJS = `() => {
	const el = this;
	const scope = el.closest('[class*="question"],.field,.form-group,fieldset') || el.parentElement || document;
	const inputs = scope.querySelectorAll('input[type="text"],input:not([type]),textarea');
	for (const i of inputs) {
		if (i === el) continue;
		const r = i.getBoundingClientRect();
		if (r.width > 0 && r.height > 0 && !i.value) {
			window.__ffOtherInput = i;
			return true;
		}
	}
	return false;
}`
