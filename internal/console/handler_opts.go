package console

import "github.com/pixil98/go-mudmap/internal/world"

type HandlerOpt func(*Handler)

// WithAreas enables the import command.
func WithAreas(a AreaCatalog) HandlerOpt {
	return func(h *Handler) {
		h.areas = a
	}
}

// WithHistory enables the history command.
func WithHistory(r HistoryReader) HandlerOpt {
	return func(h *Handler) {
		h.history = r
	}
}

func WithApplyOptions(opts world.ApplyOptions) HandlerOpt {
	return func(h *Handler) {
		h.opts = opts
	}
}
