package graphics

import (
	"unsafe"

	lin "github.com/xlab/linmath"
)

// Camera holds the view/projection pair a frame is rendered with and
// produces the combined, Vulkan-clip-space-corrected matrix CommandBuffer's
// push constants expect. Grounded on the teacher's math.go
// (VulkanProjectionMat) for the GL→Vulkan clip-space fixup, and on
// linmath.Mat4x4.Perspective/LookAt usage from the pack's other glTF viewer.
type Camera struct {
	Eye, Center, Up lin.Vec3

	FovYRadians float32
	Aspect      float32
	Near, Far   float32

	view lin.Mat4x4
	proj lin.Mat4x4
	mvp  lin.Mat4x4
}

// NewCamera builds a camera looking from eye toward center.
func NewCamera(eye, center, up lin.Vec3, fovYRadians, aspect, near, far float32) *Camera {
	c := &Camera{Eye: eye, Center: center, Up: up, FovYRadians: fovYRadians, Aspect: aspect, Near: near, Far: far}
	c.proj.Perspective(fovYRadians, aspect, near, far)
	c.view.LookAt(&c.Eye, &c.Center, &c.Up)
	return c
}

// Resize updates the aspect ratio after a swapchain resize and rebuilds the
// projection matrix.
func (c *Camera) Resize(aspect float32) {
	c.Aspect = aspect
	c.proj.Perspective(c.FovYRadians, aspect, c.Near, c.Far)
}

// vulkanProjectionFixup converts an OpenGL-convention projection matrix to
// Vulkan's top-left-origin, [0,1]-depth clip space, mirroring the teacher's
// VulkanProjectionMat step for step.
func vulkanProjectionFixup(dst, proj *lin.Mat4x4) {
	dst.Fill(1.0)
	dst.ScaleAniso(dst, 1.0, -1.0, 1.0)
	dst.ScaleAniso(dst, 1.0, 1.0, 0.5)
	dst.Translate(0.0, 0.0, 1.0)
	dst.Mult(dst, proj)
}

// MVP recomputes and returns the combined model-view-projection matrix for
// model, in Vulkan clip space.
func (c *Camera) MVP(model *lin.Mat4x4) *lin.Mat4x4 {
	var fixedProj lin.Mat4x4
	vulkanProjectionFixup(&fixedProj, &c.proj)

	var vp lin.Mat4x4
	vp.Mult(&fixedProj, &c.view)
	c.mvp.Mult(&vp, model)
	return &c.mvp
}

// PushConstantBytes returns mvp's 16 float32 entries as the raw bytes
// CommandBuffer.PushConstants expects at offset 0 of the global 128-byte
// range.
func PushConstantBytes(mvp *lin.Mat4x4) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(mvp)), int(unsafe.Sizeof(*mvp)))
}
