package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/approval/domain"
)

// ResolveApprovers builds the ordered approver list for an employee: first
// the manager chain (nearest first), then deterministic back-office
// backfill. The manager relationship is data and may contain cycles or
// dangling references; both terminate the walk instead of failing it.
func (s *Service) ResolveApprovers(ctx context.Context, employeeID snowflake.ID, requiredLevels int) ([]snowflake.ID, error) {
	if requiredLevels < 1 {
		return nil, nil
	}

	employee, err := s.employees.FindByID(ctx, s.db, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, domain.ErrEmployeeNotFound
	}

	approvers := make([]snowflake.ID, 0, requiredLevels)
	visited := map[snowflake.ID]bool{employee.ID: true}

	current := employee
	for len(approvers) < requiredLevels {
		if current.ManagerID == nil || visited[*current.ManagerID] {
			break
		}
		manager, err := s.employees.FindByID(ctx, s.db, *current.ManagerID)
		if err != nil {
			return nil, err
		}
		if manager == nil {
			break
		}
		visited[manager.ID] = true
		approvers = append(approvers, manager.ID)
		current = manager
	}

	if len(approvers) < requiredLevels {
		exclude := make([]snowflake.ID, 0, len(approvers)+1)
		exclude = append(exclude, employee.ID)
		exclude = append(exclude, approvers...)

		fallback, err := s.pool.BackOfficeApprovers(ctx, exclude, requiredLevels-len(approvers))
		if err != nil {
			return nil, err
		}
		approvers = append(approvers, fallback...)
	}

	if len(approvers) > requiredLevels {
		approvers = approvers[:requiredLevels]
	}
	return approvers, nil
}
