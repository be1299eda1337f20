// Package seed loads the badge catalog, its icons and optional demo content.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/devtree/devtree/backend/api/internal/app"
	"github.com/devtree/devtree/backend/api/internal/badges"
	"github.com/devtree/devtree/backend/api/internal/nodes"
	"github.com/devtree/devtree/backend/api/internal/trees"
	"github.com/devtree/devtree/backend/api/internal/users"
	"github.com/devtree/devtree/backend/api/pkg/logger"
)

// Demo account credentials.
const (
	DemoName     = "Demo DevTree"
	DemoEmail    = "demo@devtree.dev"
	DemoPassword = "devtree123"
)

type demoNode struct {
	Title, Description, Type string
	Tags                     []string
	Children                 []demoNode
}

type demoTree struct {
	Name, Description string
	Tags              []string
	Nodes             []demoNode
}

var demoTrees = []demoTree{
	{
		Name:        "Backend con Go",
		Description: "Ruta para construir servicios HTTP en Go",
		Tags:        []string{"backend", "golang"},
		Nodes: []demoNode{
			{Title: "Fundamentos", Description: "Tipos, slices, maps e interfaces", Type: "skill", Children: []demoNode{
				{Title: "Tour of Go", Description: "Recorrido oficial del lenguaje", Type: "recurso", Tags: []string{"docs"}},
			}},
			{Title: "Concurrencia", Description: "Goroutines, canales y context", Type: "skill"},
			{Title: "API REST propia", Description: "Diseña una API con gin y MongoDB", Type: "idea"},
		},
	},
	{
		Name:        "Frontend moderno",
		Description: "De HTML a aplicaciones con React",
		Tags:        []string{"frontend", "react", "web"},
		Nodes: []demoNode{
			{Title: "HTML y CSS", Description: "Maquetación y estilos", Type: "skill"},
			{Title: "React", Description: "Componentes, estado y hooks", Type: "skill", Children: []demoNode{
				{Title: "Documentación de React", Description: "react.dev", Type: "recurso"},
			}},
		},
	},
}

// Result counts what a run did.
type Result struct {
	Icons int
	Trees int
	Nodes int
}

// Badges upserts the catalog and uploads its icons when an icon store is configured.
func Badges(ctx context.Context, svc *app.Services) (Result, error) {
	var res Result
	if err := svc.Badges.EnsureCatalog(ctx); err != nil {
		return res, err
	}
	n, err := svc.Badges.UploadIcons(ctx)
	switch {
	case errors.Is(err, badges.ErrNoIcon):
		logger.Warn("seed: icon store not configured, skipping badge icons")
	case err != nil:
		return res, err
	}
	res.Icons = n
	return res, nil
}

// Demo creates the demo account and its public trees. A run against an
// account that already owns trees changes nothing.
func Demo(ctx context.Context, svc *app.Services) (Result, error) {
	var res Result
	u, err := svc.Users.Register(ctx, DemoName, DemoEmail, DemoPassword)
	if errors.Is(err, users.ErrUserExists) {
		u, err = svc.Users.Login(ctx, DemoEmail, DemoPassword)
	}
	if err != nil {
		return res, fmt.Errorf("demo user: %w", err)
	}
	owned, err := svc.Trees.Mine(ctx, u.ID)
	if err != nil {
		return res, err
	}
	if len(owned) > 0 {
		logger.Infof("seed: demo user already owns %d trees", len(owned))
		return res, nil
	}

	for _, dt := range demoTrees {
		t, err := svc.Trees.Create(ctx, u.ID, trees.Input{Name: dt.Name, Description: dt.Description, IsPublic: true, Tags: dt.Tags})
		if err != nil {
			return res, fmt.Errorf("demo tree %q: %w", dt.Name, err)
		}
		res.Trees++
		var add func(list []demoNode, parent string) error
		add = func(list []demoNode, parent string) error {
			for _, dn := range list {
				n, err := svc.Nodes.Create(ctx, u, nodes.Input{
					Title: dn.Title, Description: dn.Description, Type: dn.Type,
					Tags: dn.Tags, Tree: t.ID.Hex(), Parent: parent,
				})
				if err != nil {
					return fmt.Errorf("demo node %q: %w", dn.Title, err)
				}
				res.Nodes++
				if err := add(dn.Children, n.ID.Hex()); err != nil {
					return err
				}
			}
			return nil
		}
		if err := add(dt.Nodes, ""); err != nil {
			return res, err
		}
	}
	return res, nil
}
