package defect

import (
	"fmt"

	"github.com/snagtrack/snagtrack/internal/access"
	"github.com/snagtrack/snagtrack/internal/apperr"
	"github.com/snagtrack/snagtrack/internal/models"
)

// nextStatus maps each workflow status to the only status it may move to.
// The workflow is a fixed chain; skipping ahead, moving backward and
// re-applying the current status are all rejected.
var nextStatus = map[string]string{
	models.StatusNew:         models.StatusInProgress,
	models.StatusInProgress:  models.StatusUnderReview,
	models.StatusUnderReview: models.StatusClosed,
}

// checkTransition validates a requested status change against the workflow
// and the actor constraint of the matched edge. The returned errors carry
// sentences meant to be shown verbatim to the acting user.
func checkTransition(d *models.Defect, current, target string, p access.Principal) error {
	if current == target {
		return apperr.InvalidTransition(fmt.Sprintf("The defect is already in status %q", current))
	}
	if next, ok := nextStatus[current]; !ok || next != target {
		return apperr.InvalidTransition(fmt.Sprintf("Status cannot change from %q to %q", current, target))
	}

	switch target {
	case models.StatusInProgress, models.StatusClosed:
		if p.Role != models.RoleManager {
			return apperr.InvalidTransition(fmt.Sprintf("Only a manager can change status to %q", target))
		}
	case models.StatusUnderReview:
		if d.AssigneeID == nil || *d.AssigneeID != p.ID {
			return apperr.InvalidTransition("Only the assigned engineer can change status to Under Review")
		}
	}
	return nil
}
