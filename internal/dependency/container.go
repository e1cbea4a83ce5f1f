// Package dependency wires the docwright session services using go.uber.org/dig.
package dependency

import (
	"net/http"
	"time"

	"go.uber.org/dig"

	"github.com/docwright/docwright/internal/actions"
	"github.com/docwright/docwright/internal/activity"
	"github.com/docwright/docwright/internal/autosave"
	"github.com/docwright/docwright/internal/config"
	"github.com/docwright/docwright/internal/docai"
	"github.com/docwright/docwright/internal/document"
	"github.com/docwright/docwright/internal/mediator"
	"github.com/docwright/docwright/internal/orchestrator"
	"github.com/docwright/docwright/internal/schema"
	"github.com/docwright/docwright/internal/webapp"
)

// Container holds the resolved session singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	doc          *document.Document
	registry     *actions.Registry
	log          *activity.Log
	orchestrator *orchestrator.Orchestrator
	autosave     *autosave.Service
	server       *webapp.Server
}

func (c *Container) Document() *document.Document             { return c.doc }
func (c *Container) Registry() *actions.Registry              { return c.registry }
func (c *Container) Log() *activity.Log                       { return c.log }
func (c *Container) Orchestrator() *orchestrator.Orchestrator { return c.orchestrator }
func (c *Container) Server() *webapp.Server                   { return c.server }

// Autosave is nil when document.autosave is empty.
func (c *Container) Autosave() *autosave.Service { return c.autosave }

// New builds and wires all session services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		newHTTPClient,
		newDocument,
		newEditor,
		actions.NewRegistry,
		newCompleter,
		activity.NewLog,
		orchestrator.New,
		newAutosave,
		newServer,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		doc *document.Document,
		registry *actions.Registry,
		log *activity.Log,
		orch *orchestrator.Orchestrator,
		saver *autosave.Service,
		server *webapp.Server,
	) {
		result = &Container{
			doc:          doc,
			registry:     registry,
			log:          log,
			orchestrator: orch,
			autosave:     saver,
			server:       server,
		}
	})
	return result, err
}

func newHTTPClient(cfg *config.Config) *http.Client {
	timeout := time.Duration(cfg.Completion.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func newDocument(cfg *config.Config) (*document.Document, error) {
	return document.Load(cfg.DocumentPath(), cfg.Document.Author)
}

func newEditor(cfg *config.Config, doc *document.Document, client *http.Client) schema.Editor {
	return docai.New(doc, docai.Config{
		APIKey:         cfg.DocAI.APIKey,
		BaseURL:        cfg.DocAI.APIBase,
		Model:          cfg.DocAI.Model,
		Temperature:    cfg.DocAI.Temperature,
		HighlightColor: cfg.DocAI.HighlightColor,
	}, client)
}

func newCompleter(cfg *config.Config, client *http.Client) schema.Completer {
	return mediator.New(cfg.Completion.URL, cfg.Completion.ExtraHeaders, client)
}

func newAutosave(cfg *config.Config, doc *document.Document) (*autosave.Service, error) {
	if cfg.Document.Autosave == "" {
		return nil, nil
	}
	return autosave.NewService(doc, cfg.Document.Autosave)
}

func newServer(cfg *config.Config, doc *document.Document, registry *actions.Registry, log *activity.Log, orch *orchestrator.Orchestrator) *webapp.Server {
	return webapp.New(cfg.Server.Port, doc, registry, log, orch)
}
