package badges

import "github.com/devtree/devtree/backend/api/internal/models"

// Badge codes.
const (
	FirstSteps  = "first_steps"
	TreeClimber = "tree_climber"
)

// Rule awards Badge once a user has completed at least MinCompleted nodes.
type Rule struct {
	Badge        models.Badge
	MinCompleted int64
}

// Catalog is the static badge catalog, in evaluation order.
var Catalog = []Rule{
	{
		Badge: models.Badge{
			Code:        FirstSteps,
			Title:       "Primeros pasos",
			Description: "Completaste tu primer nodo",
			Icon:        "badges/first_steps.svg",
		},
		MinCompleted: 1,
	},
	{
		Badge: models.Badge{
			Code:        TreeClimber,
			Title:       "Escalador de árboles",
			Description: "Completaste 10 nodos",
			Icon:        "badges/tree_climber.svg",
		},
		MinCompleted: 10,
	},
}
