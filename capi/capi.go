// Command capi is the foreign-function surface: a cgo boundary mirroring
// the original library's C ABI (lsm_* function family), reworked around
// runtime/cgo.Handle instead of raw Box::into_raw/Box::from_raw pointer
// smuggling. Every exported function that takes a CError out-parameter
// runs under landingpad, which recovers from a panic and reports it
// through that parameter rather than crashing the host process. Functions
// without a CError parameter do not recover from panics; the view
// accessors among them return a zero value for a zero handle. Built with `go build -buildmode=c-shared` (or c-archive);
// package main is required for cgo's //export mechanism.
package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	const char *message;
	int failed;
	int code;
} smapdb_CError;

typedef struct {
	uint32_t dst_line;
	uint32_t dst_col;
	uint32_t src_line;
	uint32_t src_col;
	const char *name;
	uint32_t name_len;
	const char *src;
	uint32_t src_len;
	uint32_t src_id;
} smapdb_Token;
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/smapdb/smapdb/errs"
	"github.com/smapdb/smapdb/memdb"
	"github.com/smapdb/smapdb/view"
)

// capiView pairs a *view.View with the C-owned allocations its token
// accessors have handed out, so they can all be released together when
// the view itself is freed — the Go equivalent of the original's
// string-lifetime-tied-to-the-View borrow, since cgo forbids storing a
// Go pointer inside C memory beyond the duration of one call.
type capiView struct {
	v      *view.View
	allocs []unsafe.Pointer
}

func (c *capiView) alloc(s string) (unsafe.Pointer, C.uint32_t) {
	if s == "" {
		return nil, 0
	}

	ptr := C.CBytes([]byte(s))
	c.allocs = append(c.allocs, ptr)

	return ptr, C.uint32_t(len(s))
}

func (c *capiView) free() {
	for _, p := range c.allocs {
		C.free(p)
	}
	c.allocs = nil
}

//export smapdb_init
func smapdb_init() {
	// no global panic hook is installed: exported functions that take a
	// CError out-parameter recover via landingpad; the others do not.
}

func setCError(errOut *C.smapdb_CError, err error) {
	if errOut == nil {
		return
	}

	errOut.failed = 1
	errOut.code = C.int(errs.CodeOf(err))
	errOut.message = C.CString(err.Error())
}

func landingpad(errOut *C.smapdb_CError, f func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			setCError(errOut, errs.New(errs.KindInternal, "panic recovered at FFI boundary"))
			ok = false
		}
	}()

	if err := f(); err != nil {
		setCError(errOut, err)
		return false
	}

	return true
}

//export smapdb_view_from_json
func smapdb_view_from_json(bytes *C.uint8_t, length C.uint32_t, errOut *C.smapdb_CError) C.uintptr_t {
	var out C.uintptr_t

	landingpad(errOut, func() error {
		data := C.GoBytes(unsafe.Pointer(bytes), C.int(length))
		v, err := view.FromJSON(data)
		if err != nil {
			return err
		}

		out = C.uintptr_t(cgo.NewHandle(&capiView{v: v}))

		return nil
	})

	return out
}

//export smapdb_view_from_memdb
func smapdb_view_from_memdb(bytes *C.uint8_t, length C.uint32_t, errOut *C.smapdb_CError) C.uintptr_t {
	var out C.uintptr_t

	landingpad(errOut, func() error {
		data := C.GoBytes(unsafe.Pointer(bytes), C.int(length))
		v, err := view.OpenMemDb(data)
		if err != nil {
			return err
		}

		out = C.uintptr_t(cgo.NewHandle(&capiView{v: v}))

		return nil
	})

	return out
}

//export smapdb_view_from_memdb_file
func smapdb_view_from_memdb_file(path *C.char, errOut *C.smapdb_CError) C.uintptr_t {
	var out C.uintptr_t

	landingpad(errOut, func() error {
		v, err := view.OpenMemDbFile(C.GoString(path))
		if err != nil {
			return err
		}

		out = C.uintptr_t(cgo.NewHandle(&capiView{v: v}))

		return nil
	})

	return out
}

func viewFromHandle(h C.uintptr_t) *capiView {
	if h == 0 {
		return nil
	}

	cv, ok := cgo.Handle(h).Value().(*capiView)
	if !ok {
		return nil
	}

	return cv
}

//export smapdb_view_free
func smapdb_view_free(handle C.uintptr_t) {
	if handle == 0 {
		return
	}

	h := cgo.Handle(handle)
	if cv, ok := h.Value().(*capiView); ok {
		cv.free()
		_ = cv.v.Close()
	}
	h.Delete()
}

//export smapdb_view_get_token_count
func smapdb_view_get_token_count(handle C.uintptr_t) C.uint32_t {
	cv := viewFromHandle(handle)
	if cv == nil {
		return 0
	}

	return C.uint32_t(cv.v.GetTokenCount())
}

func setToken(cv *capiView, out *C.smapdb_Token, tm view.TokenMatch) {
	out.dst_line = C.uint32_t(tm.DstLine)
	out.dst_col = C.uint32_t(tm.DstCol)
	out.src_line = C.uint32_t(tm.SrcLine)
	out.src_col = C.uint32_t(tm.SrcCol)
	out.src_id = C.uint32_t(tm.SrcID)

	namePtr, nameLen := cv.alloc(tm.Name)
	out.name = (*C.char)(namePtr)
	out.name_len = nameLen

	srcPtr, srcLen := cv.alloc(tm.Source)
	out.src = (*C.char)(srcPtr)
	out.src_len = srcLen
}

//export smapdb_view_get_token
func smapdb_view_get_token(handle C.uintptr_t, idx C.uint32_t, out *C.smapdb_Token) C.int {
	cv := viewFromHandle(handle)
	if cv == nil {
		return 0
	}

	tm, ok := cv.v.GetToken(uint32(idx))
	if !ok {
		return 0
	}

	setToken(cv, out, tm)

	return 1
}

//export smapdb_view_lookup_token
func smapdb_view_lookup_token(handle C.uintptr_t, line, col C.uint32_t, out *C.smapdb_Token) C.int {
	cv := viewFromHandle(handle)
	if cv == nil {
		return 0
	}

	tm, ok := cv.v.LookupToken(uint32(line), uint32(col))
	if !ok {
		return 0
	}

	setToken(cv, out, tm)

	return 1
}

//export smapdb_view_get_source_count
func smapdb_view_get_source_count(handle C.uintptr_t) C.uint32_t {
	cv := viewFromHandle(handle)
	if cv == nil {
		return 0
	}

	return C.uint32_t(cv.v.GetSourceCount())
}

//export smapdb_view_has_source_contents
func smapdb_view_has_source_contents(handle C.uintptr_t, srcID C.uint32_t) C.int {
	cv := viewFromHandle(handle)
	if cv == nil {
		return 0
	}

	if _, ok := cv.v.GetSourceContents(uint32(srcID)); ok {
		return 1
	}

	return 0
}

//export smapdb_view_get_source_contents
func smapdb_view_get_source_contents(handle C.uintptr_t, srcID C.uint32_t, lenOut *C.uint32_t) *C.uint8_t {
	cv := viewFromHandle(handle)
	if cv == nil {
		return nil
	}

	contents, ok := cv.v.GetSourceContents(uint32(srcID))
	if !ok {
		return nil
	}

	ptr, length := cv.alloc(contents)
	if lenOut != nil {
		*lenOut = length
	}

	return (*C.uint8_t)(ptr)
}

//export smapdb_view_get_source_name
func smapdb_view_get_source_name(handle C.uintptr_t, srcID C.uint32_t, lenOut *C.uint32_t) *C.uint8_t {
	cv := viewFromHandle(handle)
	if cv == nil {
		return nil
	}

	name, ok := cv.v.GetSource(uint32(srcID))
	if !ok {
		return nil
	}

	ptr, length := cv.alloc(name)
	if lenOut != nil {
		*lenOut = length
	}

	return (*C.uint8_t)(ptr)
}

//export smapdb_view_dump_memdb
func smapdb_view_dump_memdb(handle C.uintptr_t, withNames, withSourceContents C.int, lenOut *C.uint32_t, errOut *C.smapdb_CError) *C.uint8_t {
	cv := viewFromHandle(handle)
	if cv == nil {
		setCError(errOut, errs.New(errs.KindInternal, "invalid view handle"))
		return nil
	}

	var result *C.uint8_t

	landingpad(errOut, func() error {
		data, err := cv.v.DumpMemdb(memdb.DumpOptions{
			WithNames:          withNames != 0,
			WithSourceContents: withSourceContents != 0,
		})
		if err != nil {
			return err
		}

		ptr := C.CBytes(data)
		cv.allocs = append(cv.allocs, ptr)
		if lenOut != nil {
			*lenOut = C.uint32_t(len(data))
		}
		result = (*C.uint8_t)(ptr)

		return nil
	})

	return result
}

//export smapdb_buffer_free
func smapdb_buffer_free(buf unsafe.Pointer) {
	if buf != nil {
		C.free(buf)
	}
}

//export smapdb_index_from_json
func smapdb_index_from_json(bytes *C.uint8_t, length C.uint32_t, errOut *C.smapdb_CError) C.uintptr_t {
	var out C.uintptr_t

	landingpad(errOut, func() error {
		data := C.GoBytes(unsafe.Pointer(bytes), C.int(length))
		idx, err := view.ParseIndex(data)
		if err != nil {
			return err
		}

		out = C.uintptr_t(cgo.NewHandle(idx))

		return nil
	})

	return out
}

//export smapdb_index_free
func smapdb_index_free(handle C.uintptr_t) {
	if handle == 0 {
		return
	}

	cgo.Handle(handle).Delete()
}

//export smapdb_index_can_flatten
func smapdb_index_can_flatten(handle C.uintptr_t) C.int {
	idx, ok := cgo.Handle(handle).Value().(*view.Index)
	if !ok {
		return 0
	}

	if idx.CanFlatten() {
		return 1
	}

	return 0
}

//export smapdb_index_into_view
func smapdb_index_into_view(handle C.uintptr_t, errOut *C.smapdb_CError) C.uintptr_t {
	var out C.uintptr_t

	landingpad(errOut, func() error {
		idx, ok := cgo.Handle(handle).Value().(*view.Index)
		if !ok {
			return errs.New(errs.KindInternal, "invalid index handle")
		}

		v, err := idx.Flatten()
		if err != nil {
			return err
		}

		cgo.Handle(handle).Delete()
		out = C.uintptr_t(cgo.NewHandle(&capiView{v: v}))

		return nil
	})

	return out
}

func main() {}
