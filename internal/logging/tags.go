package logging

import (
	"context"
	"log/slog"
)

const (
	SpaceKey      = "space"
	EntrypointKey = "entrypoint"
	LoggerKey     = "logger"
)

// Tags are the deployment labels stamped on every record so that logs from
// many jobs sharing one channel can be attributed.
type Tags struct {
	Space      string
	Entrypoint string
}

// Tag returns a copy of r carrying exactly one space and one entrypoint
// attribute. Existing values for those keys are replaced.
func (t Tags) Tag(r slog.Record) slog.Record {
	tagged := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != SpaceKey && a.Key != EntrypointKey {
			tagged.AddAttrs(a)
		}
		return true
	})
	tagged.AddAttrs(
		slog.String(SpaceKey, t.Space),
		slog.String(EntrypointKey, t.Entrypoint),
	)
	return tagged
}

// TagHandler applies Tags to each record before handing it to next.
type TagHandler struct {
	tags Tags
	next slog.Handler
}

func NewTagHandler(tags Tags, next slog.Handler) *TagHandler {
	return &TagHandler{tags: tags, next: next}
}

func (h *TagHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TagHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, h.tags.Tag(r))
}

func (h *TagHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TagHandler{tags: h.tags, next: h.next.WithAttrs(attrs)}
}

func (h *TagHandler) WithGroup(name string) slog.Handler {
	return &TagHandler{tags: h.tags, next: h.next.WithGroup(name)}
}
