package templates

import (
	"io"
	"log/slog"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/events"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/notify"
)

// Picker is the template picker of the editor shell.
type Picker interface {
	CloseTemplatePicker()
}

// Loader replaces a whole graph with a template. Edits in the current graph
// are discarded.
type Loader struct {
	store    *graph.Store
	picker   Picker
	notifier notify.Sink
	listener graph.Listener
	logger   *slog.Logger
}

type LoaderOption func(*Loader)

func WithNotifier(sink notify.Sink) LoaderOption {
	return func(l *Loader) {
		l.notifier = sink
	}
}

func WithListener(listener graph.Listener) LoaderOption {
	return func(l *Loader) {
		l.listener = listener
	}
}

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

func NewLoader(store *graph.Store, picker Picker, opts ...LoaderOption) *Loader {
	loader := &Loader{
		store:    store,
		picker:   picker,
		notifier: notify.Discard{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(loader)
	}

	return loader
}

// Apply installs the template blocks verbatim, closes the picker and reports
// success. Integrity problems of the template are logged and returned but do
// not prevent the replacement.
func (l *Loader) Apply(template *models.AutomationTemplate) []graph.Issue {
	issues := graph.Check(template.Blocks)
	for _, issue := range issues {
		l.logger.Warn("Template integrity issue",
			"template_id", template.ID,
			"kind", issue.Kind,
			"block_id", issue.BlockID,
			"target_id", issue.TargetID,
		)
	}

	l.store.ReplaceAll(template.Blocks)

	if l.picker != nil {
		l.picker.CloseTemplatePicker()
	}

	l.logger.Info("Template applied", "template_id", template.ID, "blocks", len(template.Blocks))
	l.notifier.Notify(notify.Success("Template \"" + template.Name + "\" applied"))

	if l.listener != nil {
		l.listener(events.NewTemplateApplied(template.ID))
	}

	return issues
}
