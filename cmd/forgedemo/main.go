// Command forgedemo opens a window, spins up the Vulkan 1.3 renderer, and
// drives a minimal frame loop over a handful of ECS entities: each frame
// clears the swapchain image and pushes one MVP push constant per entity. No
// pipeline is bound and nothing is drawn. It is a smoke test exercising the
// memory, ecs, and graphics packages together end to end.
package main

import (
	"context"
	"log"
	"time"

	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"

	"github.com/andewx/forgevk/config"
	"github.com/andewx/forgevk/ecs"
	"github.com/andewx/forgevk/graphics"
	"github.com/andewx/forgevk/memory"
)

// Transform is a minimal per-entity pose component driving the demo scene.
type Transform struct {
	Position lin.Vec3
	Spin     float32
}

func main() {
	mem, err := memory.NewManager(memory.MemoryManagerDesc{FramesInFlight: 2})
	if err != nil {
		log.Fatalf("forgedemo: memory manager: %v", err)
	}
	log.Printf("forgedemo: memory manager ready, %d bytes across %d pools", mem.TotalCapacity(), mem.Stats().PoolCount)

	registry := ecs.NewRegistry()
	for i := 0; i < 8; i++ {
		e := registry.CreateEntity()
		ecs.Set(registry, e, Transform{
			Position: lin.Vec3{float32(i) - 3.5, 0, 0},
			Spin:     float32(i) * 0.3,
		})
	}

	usage := config.NewUsage("forgedemo", 1)

	renderer, err := graphics.NewRenderer(graphics.RendererDesc{
		AppName:        "forgedemo",
		Width:          1280,
		Height:         720,
		Debug:          true,
		FramesInFlight: 2,
		Usage:          usage,
	})
	if err != nil {
		log.Fatalf("forgedemo: renderer init: %v", err)
	}
	defer renderer.Destroy()

	width, height := renderer.Instance.FramebufferSize()
	camera := graphics.NewCamera(
		lin.Vec3{0, 2, 6},
		lin.Vec3{0, 0, 0},
		lin.Vec3{0, 1, 0},
		lin.DegreesToRadians(45.0),
		float32(width)/float32(height),
		0.1, 100.0,
	)

	view := ecs.View1Of[Transform](registry)

	start := time.Now()
	for !renderer.Instance.ShouldClose() {
		renderer.Instance.PollEvents()

		cb, imageIndex, slot, err := renderer.BeginFrame(context.Background())
		if err == graphics.ErrSwapchainOutOfDate {
			if err := renderer.Resize(); err != nil {
				log.Fatalf("forgedemo: resize: %v", err)
			}
			continue
		}
		if err != nil {
			log.Fatalf("forgedemo: begin frame: %v", err)
		}

		extent := renderer.Swapchain.Extent()
		cb.BeginRendering(graphics.RenderingTarget{
			ColorView: renderer.Swapchain.ImageViews()[imageIndex],
			Extent:    extent,
			Clear:     true,
		})
		cb.BindGlobalDescriptorSets(vk.PipelineBindPointGraphics)
		cb.SetViewport(vk.Viewport{Width: float32(extent.Width), Height: float32(extent.Height), MinDepth: 0, MaxDepth: 1})
		cb.SetScissor(vk.Rect2D{Extent: extent})

		elapsed := float32(time.Since(start).Seconds())
		view.Each(func(_ ecs.Entity, t *Transform) {
			var model lin.Mat4x4
			model.Identity()
			model.Translate(t.Position[0], t.Position[1], t.Position[2])
			mvp := camera.MVP(&model)
			cb.PushConstants(graphics.PushConstantBytes(mvp))
			_ = elapsed + t.Spin
		})

		cb.EndRendering()

		if err := renderer.EndFrame(cb, imageIndex, slot); err == graphics.ErrSwapchainOutOfDate {
			if err := renderer.Resize(); err != nil {
				log.Fatalf("forgedemo: resize: %v", err)
			}
		} else if err != nil {
			log.Fatalf("forgedemo: end frame: %v", err)
		}
	}
}
