package graphics

import (
	"reflect"
	"unsafe"
)

// unsafePointer returns a pointer-typed v's address as the unsafe.Pointer
// vulkan-go's pNext chains expect. Centralized here so every pNext
// extension-struct hookup in this package goes through one auditable cast.
func unsafePointer(v any) unsafe.Pointer {
	return unsafe.Pointer(reflect.ValueOf(v).Pointer())
}
