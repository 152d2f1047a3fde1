package store

import (
	"context"
	"fmt"

	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/models"
)

const (
	selectActiveGlobals = `SELECT id, doc, is_active, updated_at FROM global_variables WHERE is_active ORDER BY name`

	upsertGlobal = `INSERT INTO global_variables (id, name, is_active, doc, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, is_active = EXCLUDED.is_active, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
)

func (s *Store) ListActiveGlobalVariables(ctx context.Context) ([]models.GlobalVariable, error) {
	rows, err := s.db.Query(ctx, selectActiveGlobals)
	if err != nil {
		return nil, s.readErr("global_variables", err, nil)
	}
	defer rows.Close()

	vars := []models.GlobalVariable{}
	for rows.Next() {
		var (
			g   models.GlobalVariable
			doc []byte
		)
		if err := rows.Scan(&g.ID, &doc, &g.IsActive, &g.UpdatedAt); err != nil {
			return nil, s.readErr("global_variables", err, nil)
		}
		id, active, updated := g.ID, g.IsActive, g.UpdatedAt
		if err := decodeDoc(doc, &g); err != nil {
			return nil, s.readErr("global_variables", err, nil)
		}
		g.ID, g.IsActive, g.UpdatedAt = id, active, updated
		vars = append(vars, g)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readErr("global_variables", err, nil)
	}
	return vars, nil
}

// SaveGlobalVariable upserts g. A name already taken by another variable is
// reported as DUPLICATE_VARIABLE.
func (s *Store) SaveGlobalVariable(ctx context.Context, g *models.GlobalVariable) error {
	if !validation.ValidateVariableName(g.Name) {
		return errors.NewValidationError(fmt.Sprintf("variable name %q must match ^[A-Za-z][A-Za-z0-9_]*$", g.Name))
	}
	ensureID(&g.ID)
	if g.Category == "" {
		g.Category = models.GlobalCategoryCustom
	}
	if g.UsageExample == "" {
		g.UsageExample = "{{" + g.Name + "}}"
	}
	g.UpdatedAt = s.now()

	doc, err := encodeDoc(g)
	if err != nil {
		return s.writeErr("global_variables", err)
	}

	if _, err := s.db.Exec(ctx, upsertGlobal, g.ID, g.Name, g.IsActive, doc, g.UpdatedAt); err != nil {
		if constraint, ok := database.IsUniqueViolation(err); ok {
			return errors.NewDuplicateVariableError(g.Name).WithMetadata("constraint", constraint)
		}
		return s.writeErr("global_variables", err)
	}
	return nil
}
