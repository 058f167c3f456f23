//go:build windows

package caret

import (
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
)

// Minimal UI Automation client bindings. UIA exposes plain (non-dispatch)
// COM interfaces, so calls go through the raw vtables; each vtbl struct
// below lists method slots in declaration order up to the last one used.

var (
	clsidCUIAutomation = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")

	iidIUIAutomation             = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")
	iidIUIAutomationTextPattern  = ole.NewGUID("{32EBA289-3583-42C9-9C59-3B6D9A1E9B6A}")
	iidIUIAutomationTextPattern2 = ole.NewGUID("{506A921A-FCC9-409F-B23B-37EB74106872}")
)

// UIAutomation property, pattern, and control-type IDs (UIAutomationClient.h).
const (
	propBoundingRectangle       = 30001
	propProcessID               = 30002
	propControlType             = 30003
	propIsTextPatternAvailable  = 30040
	propIsValuePatternAvailable = 30043

	patternText  = 10014
	patternText2 = 10024

	controlComboBox = 50003
	controlEdit     = 50004
	controlDocument = 50030
)

type rectF struct {
	left, top, width, height float64
}

func comCall(method uintptr, args ...uintptr) error {
	hr, _, _ := syscall.SyscallN(method, args...)
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

func queryInterface(unk *ole.IUnknown, iid *ole.GUID) (*ole.IUnknown, bool) {
	var out *ole.IUnknown
	vt := (*ole.IUnknownVtbl)(unsafe.Pointer(unk.RawVTable))
	err := comCall(vt.QueryInterface,
		uintptr(unsafe.Pointer(unk)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)))
	return out, err == nil && out != nil
}

func release(unk *ole.IUnknown) {
	if unk != nil {
		unk.Release()
	}
}

// ---- IUIAutomation ----

type automationVtbl struct {
	ole.IUnknownVtbl
	CompareElements   uintptr
	CompareRuntimeIds uintptr
	GetRootElement    uintptr
	ElementFromHandle uintptr
	ElementFromPoint  uintptr
	GetFocusedElement uintptr
}

type automation struct {
	ptr *ole.IUnknown
}

// newAutomation creates the CUIAutomation COM object. Must be called on a
// COM-initialized thread; the returned handle is only used from that thread.
func newAutomation() (*automation, error) {
	unk, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		return nil, err
	}
	return &automation{ptr: unk}, nil
}

func (a *automation) vtbl() *automationVtbl {
	return (*automationVtbl)(unsafe.Pointer(a.ptr.RawVTable))
}

func (a *automation) release() {
	release(a.ptr)
}

// focusedElement returns the element with input focus, rejecting elements
// owned by this process (the companion must never track our own windows).
func (a *automation) focusedElement() (*element, bool) {
	var raw *ole.IUnknown
	err := comCall(a.vtbl().GetFocusedElement,
		uintptr(unsafe.Pointer(a.ptr)),
		uintptr(unsafe.Pointer(&raw)))
	if err != nil || raw == nil {
		return nil, false
	}
	el := &element{ptr: raw}
	if pid, ok := el.intProp(propProcessID); ok && uint32(pid) == ownPID() {
		el.release()
		return nil, false
	}
	return el, true
}

// ---- IUIAutomationElement ----

type elementVtbl struct {
	ole.IUnknownVtbl
	SetFocus                  uintptr
	GetRuntimeId              uintptr
	FindFirst                 uintptr
	FindAll                   uintptr
	FindFirstBuildCache       uintptr
	FindAllBuildCache         uintptr
	BuildUpdatedCache         uintptr
	GetCurrentPropertyValue   uintptr
	GetCurrentPropertyValueEx uintptr
	GetCachedPropertyValue    uintptr
	GetCachedPropertyValueEx  uintptr
	GetCurrentPatternAs       uintptr
	GetCachedPatternAs        uintptr
	GetCurrentPattern         uintptr
	GetCachedPattern          uintptr
}

type element struct {
	ptr *ole.IUnknown
}

func (e *element) vtbl() *elementVtbl {
	return (*elementVtbl)(unsafe.Pointer(e.ptr.RawVTable))
}

func (e *element) release() {
	release(e.ptr)
}

func (e *element) property(propID int) (*ole.VARIANT, bool) {
	var v ole.VARIANT
	ole.VariantInit(&v)
	err := comCall(e.vtbl().GetCurrentPropertyValue,
		uintptr(unsafe.Pointer(e.ptr)),
		uintptr(propID),
		uintptr(unsafe.Pointer(&v)))
	if err != nil {
		return nil, false
	}
	return &v, true
}

func (e *element) intProp(propID int) (int32, bool) {
	v, ok := e.property(propID)
	if !ok {
		return 0, false
	}
	defer v.Clear()
	if v.VT != ole.VT_I4 {
		return 0, false
	}
	return int32(v.Val), true
}

func (e *element) boolProp(propID int) bool {
	v, ok := e.property(propID)
	if !ok {
		return false
	}
	defer v.Clear()
	b, _ := v.Value().(bool)
	return b
}

// boundingRect reads the element's screen rectangle, delivered as a
// four-double safearray VARIANT (left, top, width, height).
func (e *element) boundingRect() (rectF, bool) {
	v, ok := e.property(propBoundingRectangle)
	if !ok {
		return rectF{}, false
	}
	defer v.Clear()
	if v.VT != ole.VT_ARRAY|ole.VT_R8 || v.Val == 0 {
		return rectF{}, false
	}
	conv := ole.SafeArrayConversion{Array: (*ole.SafeArray)(unsafe.Pointer(uintptr(v.Val)))}
	vals := conv.ToValueArray()
	if len(vals) < 4 {
		return rectF{}, false
	}
	r, ok := rectFromValues(vals[:4])
	return r, ok
}

// pattern fetches a current pattern object and narrows it to iid.
func (e *element) pattern(patternID int, iid *ole.GUID) (*ole.IUnknown, bool) {
	var raw *ole.IUnknown
	err := comCall(e.vtbl().GetCurrentPattern,
		uintptr(unsafe.Pointer(e.ptr)),
		uintptr(patternID),
		uintptr(unsafe.Pointer(&raw)))
	if err != nil || raw == nil {
		return nil, false
	}
	defer release(raw)
	return queryInterface(raw, iid)
}

func (e *element) textPattern() (*textPattern, bool) {
	unk, ok := e.pattern(patternText, iidIUIAutomationTextPattern)
	if !ok {
		return nil, false
	}
	return &textPattern{ptr: unk}, true
}

func (e *element) textPattern2() (*textPattern2, bool) {
	unk, ok := e.pattern(patternText2, iidIUIAutomationTextPattern2)
	if !ok {
		return nil, false
	}
	return &textPattern2{ptr: unk}, true
}

// ---- IUIAutomationTextPattern / IUIAutomationTextPattern2 ----

type textPatternVtbl struct {
	ole.IUnknownVtbl
	RangeFromPoint            uintptr
	RangeFromChild            uintptr
	GetSelection              uintptr
	GetVisibleRanges          uintptr
	GetDocumentRange          uintptr
	GetSupportedTextSelection uintptr
}

type textPattern2Vtbl struct {
	textPatternVtbl
	RangeFromAnnotation uintptr
	GetCaretRange       uintptr
}

type textPattern struct {
	ptr *ole.IUnknown
}

func (p *textPattern) release() {
	release(p.ptr)
}

func (p *textPattern) selection() (*textRangeArray, bool) {
	vt := (*textPatternVtbl)(unsafe.Pointer(p.ptr.RawVTable))
	var raw *ole.IUnknown
	err := comCall(vt.GetSelection,
		uintptr(unsafe.Pointer(p.ptr)),
		uintptr(unsafe.Pointer(&raw)))
	if err != nil || raw == nil {
		return nil, false
	}
	return &textRangeArray{ptr: raw}, true
}

type textPattern2 struct {
	ptr *ole.IUnknown
}

func (p *textPattern2) release() {
	release(p.ptr)
}

// caretRange asks for the degenerate range at the caret. active reports
// whether the pattern considers that caret currently active/visible; an
// inactive caret is not a usable anchor.
func (p *textPattern2) caretRange() (active bool, rng *textRange, ok bool) {
	vt := (*textPattern2Vtbl)(unsafe.Pointer(p.ptr.RawVTable))
	var isActive int32
	var raw *ole.IUnknown
	err := comCall(vt.GetCaretRange,
		uintptr(unsafe.Pointer(p.ptr)),
		uintptr(unsafe.Pointer(&isActive)),
		uintptr(unsafe.Pointer(&raw)))
	if err != nil || raw == nil {
		return false, nil, false
	}
	return isActive != 0, &textRange{ptr: raw}, true
}

// ---- IUIAutomationTextRange / IUIAutomationTextRangeArray ----

type textRangeVtbl struct {
	ole.IUnknownVtbl
	Clone                 uintptr
	Compare               uintptr
	CompareEndpoints      uintptr
	ExpandToEnclosingUnit uintptr
	FindAttribute         uintptr
	FindText              uintptr
	GetAttributeValue     uintptr
	GetBoundingRectangles uintptr
	GetEnclosingElement   uintptr
	GetText               uintptr
}

type textRange struct {
	ptr *ole.IUnknown
}

func (r *textRange) release() {
	release(r.ptr)
}

// boundingRectangles returns the range's screen rectangles, flattened by
// UIA into a safearray of doubles in groups of four.
func (r *textRange) boundingRectangles() ([]rectF, bool) {
	vt := (*textRangeVtbl)(unsafe.Pointer(r.ptr.RawVTable))
	var sa *ole.SafeArray
	err := comCall(vt.GetBoundingRectangles,
		uintptr(unsafe.Pointer(r.ptr)),
		uintptr(unsafe.Pointer(&sa)))
	if err != nil || sa == nil {
		return nil, false
	}
	conv := &ole.SafeArrayConversion{Array: sa}
	defer conv.Release()

	vals := conv.ToValueArray()
	rects := make([]rectF, 0, len(vals)/4)
	for i := 0; i+4 <= len(vals); i += 4 {
		if rect, ok := rectFromValues(vals[i : i+4]); ok {
			rects = append(rects, rect)
		}
	}
	return rects, len(rects) > 0
}

type textRangeArrayVtbl struct {
	ole.IUnknownVtbl
	GetLength  uintptr
	GetElement uintptr
}

type textRangeArray struct {
	ptr *ole.IUnknown
}

func (a *textRangeArray) release() {
	release(a.ptr)
}

func (a *textRangeArray) length() int {
	vt := (*textRangeArrayVtbl)(unsafe.Pointer(a.ptr.RawVTable))
	var n int32
	if err := comCall(vt.GetLength,
		uintptr(unsafe.Pointer(a.ptr)),
		uintptr(unsafe.Pointer(&n))); err != nil {
		return 0
	}
	return int(n)
}

func (a *textRangeArray) element(i int) (*textRange, bool) {
	vt := (*textRangeArrayVtbl)(unsafe.Pointer(a.ptr.RawVTable))
	var raw *ole.IUnknown
	err := comCall(vt.GetElement,
		uintptr(unsafe.Pointer(a.ptr)),
		uintptr(i),
		uintptr(unsafe.Pointer(&raw)))
	if err != nil || raw == nil {
		return nil, false
	}
	return &textRange{ptr: raw}, true
}

func rectFromValues(vals []interface{}) (rectF, bool) {
	var out [4]float64
	for i, v := range vals {
		f, ok := v.(float64)
		if !ok {
			return rectF{}, false
		}
		out[i] = f
	}
	return rectF{left: out[0], top: out[1], width: out[2], height: out[3]}, true
}
