// Package repositories defines the repository interfaces for content entities.
// These repositories abstract the persistence details, keeping the application
// layer decoupled from where works are stored.
package repositories

import (
	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
)

// WorkRepository reads published works. Drafts are never returned.
type WorkRepository interface {
	FindBySlug(slug string) (*content.Work, error)
	FindByID(id string) (*content.Work, error)
	FindAll() []*content.Work
}
