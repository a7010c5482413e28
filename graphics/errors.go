package graphics

import (
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

// VulkanError wraps a non-success vk.Result with the call site that produced it.
type VulkanError struct {
	Result vk.Result
	Site   string
}

func (e *VulkanError) Error() string {
	return fmt.Sprintf("vulkan error: %d at %s", e.Result, e.Site)
}

// NewError returns nil for vk.Success, otherwise a *VulkanError naming the caller.
func NewError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	site := "unknown"
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			site = fn.Name()
		}
	}
	return &VulkanError{Result: ret, Site: site}
}

// orPanic treats err as a precondition violation per distilled spec §7:
// device-lost and other unrecoverable VkResults are fatal assertions, not
// propagated errors.
func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

// checkErr recovers a panic into *err, for constructors that want to return
// an error rather than crash the caller outright (mirrors the teacher's
// errors.go checkErr/orPanic pairing).
func checkErr(err *error) {
	if v := recover(); v != nil {
		switch e := v.(type) {
		case error:
			*err = e
		default:
			*err = fmt.Errorf("%v", v)
		}
	}
}
