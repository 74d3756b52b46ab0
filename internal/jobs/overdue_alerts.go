package jobs

import (
	"context"
	"log"
	"time"

	"toolcare/internal/models"
	"toolcare/internal/repositories"

	"github.com/google/uuid"
)

// OverdueAlertService flags loans that have been open longer than the
// configured threshold.
type OverdueAlertService struct {
	loanRepo repositories.LoanRepository
	toolRepo repositories.ToolRepository
}

type OverdueAlert struct {
	LoanID          uuid.UUID
	LoanName        string
	ToolName        string
	ToolSerial      string
	EmployeeID      *uuid.UUID
	StartDate       time.Time
	DaysOutstanding int
}

func NewOverdueAlertService(loanRepo repositories.LoanRepository, toolRepo repositories.ToolRepository) *OverdueAlertService {
	return &OverdueAlertService{
		loanRepo: loanRepo,
		toolRepo: toolRepo,
	}
}

// CheckOverdueLoans returns every open loan older than maxAge.
func (a *OverdueAlertService) CheckOverdueLoans(ctx context.Context, maxAge time.Duration) ([]OverdueAlert, error) {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}

	active := true
	loans, err := a.loanRepo.List(ctx, &models.LoanSearchFilter{Active: &active, Limit: 1000})
	if err != nil {
		log.Printf("Failed to list open loans: %v", err)
		return nil, err
	}

	cutoff := time.Now().Add(-maxAge)
	var alerts []OverdueAlert
	for _, loan := range loans {
		if !loan.StartDate.Before(cutoff) {
			continue
		}

		alert := OverdueAlert{
			LoanID:          loan.ID,
			EmployeeID:      loan.EmployeeID,
			StartDate:       loan.StartDate,
			DaysOutstanding: int(time.Since(loan.StartDate).Hours() / 24),
		}
		if loan.Name != nil {
			alert.LoanName = *loan.Name
		}
		if loan.ToolID != nil {
			tool, err := a.toolRepo.GetByID(ctx, *loan.ToolID)
			if err != nil {
				log.Printf("Failed to get tool %s: %v", loan.ToolID.String(), err)
			} else {
				alert.ToolName = tool.Name
				alert.ToolSerial = tool.SerialNumber
			}
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func (a *OverdueAlertService) LogOverdueAlerts(ctx context.Context, alerts []OverdueAlert) {
	if len(alerts) == 0 {
		log.Println("No overdue loans")
		return
	}

	log.Printf("Overdue loans: %d", len(alerts))
	for _, alert := range alerts {
		log.Printf("- Loan %s: tool '%s' (serial %s) out since %s (%d days)",
			alert.LoanName,
			alert.ToolName,
			alert.ToolSerial,
			alert.StartDate.Format("2006-01-02"),
			alert.DaysOutstanding)
	}
}
