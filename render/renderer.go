package render

import "context"

// Job describes one slideshow render: narration audio plus storyboard
// images, with the title used as an opening caption.
type Job struct {
	AudioPath  string
	ImagePaths []string
	Title      string
	OutputPath string
}

// Result is the rendered video, either as a local file or a hosted URL
// depending on the renderer.
type Result struct {
	Path string
	URL  string
}

// Renderer assembles a slideshow video from a render job
type Renderer interface {
	Render(ctx context.Context, job Job) (Result, error)
}
