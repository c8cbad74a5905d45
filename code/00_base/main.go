package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW must only be used from the main thread.
	runtime.LockOSThread()

	flag.IntVar(&args.width, "width", 1024, "Width of the window in screen coordinates")
	flag.IntVar(&args.height, "height", 768, "Height of the window in screen coordinates")
}

var args struct {
	width  int
	height int
}

const (
	title = "Vulkan Tutorial"
)

func main() {
	flag.Parse()

	if args.width <= 0 || args.height <= 0 {
		log.Fatalf("ERROR: invalid window size %dx%d", args.width, args.height)
	}

	app := &BaseApp{
		width:  args.width,
		height: args.height,
	}
	if err := app.Run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// BaseApp is the skeleton all following programs grow from. It owns a GLFW
// window without a client API and polls its events until it is closed with
// the window controls or the Escape key.
type BaseApp struct {
	width  int
	height int

	window *glfw.Window
}

// Run opens the window and blocks until it is closed.
func (b *BaseApp) Run() error {
	if err := b.openWindow(); err != nil {
		return fmt.Errorf("openWindow: %w", err)
	}
	defer b.closeWindow()

	b.pollUntilClosed()
	return nil
}

func (b *BaseApp) openWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	// Vulkan draws into the window so GLFW must not create an OpenGL context.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(b.width, b.height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating %dx%d window: %w", b.width, b.height, err)
	}

	window.SetKeyCallback(func(
		w *glfw.Window,
		key glfw.Key,
		scancode int,
		action glfw.Action,
		mods glfw.ModifierKey,
	) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	b.window = window
	return nil
}

func (b *BaseApp) closeWindow() {
	b.window.Destroy()
	glfw.Terminate()
}

func (b *BaseApp) pollUntilClosed() {
	log.Printf("window %dx%d open, waiting for it to be closed", b.width, b.height)

	for !b.window.ShouldClose() {
		glfw.PollEvents()
	}
}
