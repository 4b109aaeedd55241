package index

import (
	"context"

	"github.com/colabio/crowdfund/src/utils/model"

	"gorm.io/gorm"
)

// Read side of the index
type Query struct {
	DB *gorm.DB
}

func NewQuery(db *gorm.DB) *Query {
	return &Query{DB: db}
}

func (self *Query) ProjectsByCreator(ctx context.Context, creator string) (out []model.Project, err error) {
	err = self.DB.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("creator = ?", creator).
		Order("slot ASC").
		Order("address ASC").
		Find(&out).
		Error
	return
}

func (self *Query) ContributionsByContributor(ctx context.Context, contributor string) (out []model.Contribution, err error) {
	err = self.DB.WithContext(ctx).
		Where("contributor = ?", contributor).
		Order("slot ASC").
		Order("tx_id ASC").
		Find(&out).
		Error
	return
}

func (self *Query) TransactionsByProject(ctx context.Context, project string, limit int) (out []model.Transaction, err error) {
	err = self.DB.WithContext(ctx).
		Where("project = ?", project).
		Order("slot DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).
		Error
	return
}

func (self *Query) LastIndexedSlot(ctx context.Context) (slot uint64, err error) {
	var state model.State
	err = self.DB.WithContext(ctx).
		Where("name = ?", model.SyncedComponentIndexer).
		Limit(1).
		Find(&state).
		Error
	return state.LastSlot, err
}
