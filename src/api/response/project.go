package response

import (
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/model"
)

type GetProject struct {
	Address  runtime.Pubkey   `json:"address"`
	Lamports uint64           `json:"lamports"`
	Project  *program.Project `json:"project"`
}

type GetAccount struct {
	Address runtime.Pubkey `json:"address"`
	*ledger.Account
}

type Milestone struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      uint64 `json:"amount"`
	Completed   bool   `json:"completed"`
	Validations uint32 `json:"validations"`
}

type Project struct {
	Address      string      `json:"address"`
	Creator      string      `json:"creator"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	GoalAmount   uint64      `json:"goal_amount"`
	RaisedAmount uint64      `json:"raised_amount"`
	StartTime    uint64      `json:"start_time"`
	EndTime      uint64      `json:"end_time"`
	Status       string      `json:"status"`
	ApproveVotes uint32      `json:"approve_votes"`
	RejectVotes  uint32      `json:"reject_votes"`
	Slot         uint64      `json:"slot"`
	Milestones   []Milestone `json:"milestones"`
}

type GetProjects struct {
	Projects []Project `json:"projects"`
}

func ProjectsToResponse(projects []model.Project) *GetProjects {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = Project{
			Address:      p.Address,
			Creator:      p.Creator,
			Title:        p.Title,
			Description:  p.Description,
			GoalAmount:   p.GoalAmount,
			RaisedAmount: p.RaisedAmount,
			StartTime:    p.StartTime,
			EndTime:      p.EndTime,
			Status:       p.Status,
			ApproveVotes: p.ApproveVotes,
			RejectVotes:  p.RejectVotes,
			Slot:         p.Slot,
			Milestones:   make([]Milestone, len(p.Milestones)),
		}
		for j, m := range p.Milestones {
			out[i].Milestones[j] = Milestone{
				Name:        m.Name,
				Description: m.Description,
				Amount:      m.Amount,
				Completed:   m.Completed,
				Validations: m.Validations,
			}
		}
	}

	return &GetProjects{Projects: out}
}

type Contribution struct {
	TxId        string `json:"tx_id"`
	Address     string `json:"address"`
	Contributor string `json:"contributor"`
	Project     string `json:"project"`
	Amount      uint64 `json:"amount"`
	Timestamp   uint64 `json:"timestamp"`
	Slot        uint64 `json:"slot"`
}

type GetContributions struct {
	Contributions []Contribution `json:"contributions"`
}

func ContributionsToResponse(contributions []model.Contribution) *GetContributions {
	out := make([]Contribution, len(contributions))
	for i, c := range contributions {
		out[i] = Contribution(c)
	}
	return &GetContributions{Contributions: out}
}
