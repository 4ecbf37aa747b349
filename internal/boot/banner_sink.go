package boot

// bannerSink adapts the console to internal/banner.Renderer. The original
// banner_draw (original_source/src/banner.c) blits RGBA pixels onto a
// linear framebuffer; this kernel's console is VGA text mode (§1 AMBIENT
// STACK), which has no pixel plane to draw into, so there is no faithful
// rasterizer to write here. Rather than silently drop animation frames,
// this logs each frame's dimensions through the same console a real
// framebuffer driver would eventually replace this adapter with (see
// DESIGN.md).
type bannerSink struct {
	out interface {
		Printf(format string, args ...any)
	}
}

func (b *bannerSink) DrawBitmap(x, y int, width, height uint32, pixels []byte) {
	b.out.Printf("[banner] frame %dx%d at (%d,%d)\n", width, height, x, y)
}
