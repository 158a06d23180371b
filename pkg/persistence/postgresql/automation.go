package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/persistence"
)

const selectAutomations = `
		SELECT
			id
		  , name
		  , description
		  , template_id
		  , owner
		  , created_at
		  , updated_at
		FROM automations
`

const selectBlocks = `
		SELECT
			id
		  , block_type
		  , category
		  , position_x
		  , position_y
		  , configured
		  , config
		  , connections
		FROM automation_blocks
		WHERE automation_id = $1
		ORDER BY ordinal
`

// AutomationRepository handles automation-related database operations.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewAutomationRepository(db *sql.DB, logger *slog.Logger) *AutomationRepository {
	return &AutomationRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetAll returns every live automation, newest first.
func (r *AutomationRepository) GetAll(ctx context.Context) ([]*models.Automation, error) {
	query := selectAutomations + `
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}

	defer func(ctx context.Context, r *AutomationRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}

		automations = append(automations, automation)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating automations: %w", err)
	}

	for _, automation := range automations {
		automation.Blocks, err = r.loadBlocks(ctx, automation.ID)
		if err != nil {
			return nil, err
		}
	}

	return automations, nil
}

func (r *AutomationRepository) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	query := selectAutomations + `
		WHERE id = $1 AND deleted_at IS NULL
	`

	automation, err := scanAutomation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewAutomationError("GetByID", id, persistence.ErrAutomationNotFound)
		}

		return nil, fmt.Errorf("failed to scan automation: %w", err)
	}

	automation.Blocks, err = r.loadBlocks(ctx, id)
	if err != nil {
		return nil, err
	}

	return automation, nil
}

// Save upserts the automation and replaces its blocks in one transaction.
func (r *AutomationRepository) Save(ctx context.Context, automation *models.Automation) (err error) {
	err = persistence.PrepareForSave(automation, r.now())
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	automationQuery := `
		INSERT INTO automations (id, name, description, template_id, owner, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			template_id = EXCLUDED.template_id,
			owner = EXCLUDED.owner,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`

	_, err = tx.ExecContext(ctx, automationQuery,
		automation.ID,
		automation.Name,
		automation.Description,
		nullString(automation.TemplateID),
		nullString(automation.Owner),
		automation.CreatedAt,
		automation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save automation base: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM automation_blocks WHERE automation_id = $1", automation.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing blocks: %w", err)
	}

	blockQuery := `
		INSERT INTO automation_blocks (automation_id, id, ordinal, block_type, category, position_x, position_y, configured, config, connections)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for ordinal, block := range automation.Blocks {
		configJSON, connectionsJSON, marshalErr := marshalBlock(block)
		if marshalErr != nil {
			err = marshalErr

			return err
		}

		_, err = tx.ExecContext(ctx, blockQuery,
			automation.ID,
			block.ID,
			ordinal,
			string(block.Type),
			string(block.Category),
			block.Position.X,
			block.Position.Y,
			block.Configured,
			configJSON,
			connectionsJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to save block %s: %w", block.ID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete soft deletes an automation.
func (r *AutomationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE automations SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		r.now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete automation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.NewAutomationError("Delete", id, persistence.ErrAutomationNotFound)
	}

	return nil
}

func (r *AutomationRepository) loadBlocks(ctx context.Context, automationID string) ([]*models.Block, error) {
	rows, err := r.db.QueryContext(ctx, selectBlocks, automationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}

	defer func(ctx context.Context, r *AutomationRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	blocks := make([]*models.Block, 0)

	for rows.Next() {
		var (
			block           models.Block
			blockType       string
			category        string
			configJSON      []byte
			connectionsJSON []byte
		)

		err := rows.Scan(
			&block.ID,
			&blockType,
			&category,
			&block.Position.X,
			&block.Position.Y,
			&block.Configured,
			&configJSON,
			&connectionsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}

		block.Type = models.BlockType(blockType)
		block.Category = models.CategoryType(category)

		block.Config, err = models.DecodeConfig(block.Type, configJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config of block %s: %w", block.ID, err)
		}

		block.Connections = make([]string, 0)
		if err := json.Unmarshal(connectionsJSON, &block.Connections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal connections of block %s: %w", block.ID, err)
		}

		blocks = append(blocks, &block)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}

	return blocks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAutomation(row scanner) (*models.Automation, error) {
	var (
		automation models.Automation
		templateID sql.NullString
		owner      sql.NullString
	)

	err := row.Scan(
		&automation.ID,
		&automation.Name,
		&automation.Description,
		&templateID,
		&owner,
		&automation.CreatedAt,
		&automation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	automation.TemplateID = templateID.String
	automation.Owner = owner.String

	return &automation, nil
}

func marshalBlock(block *models.Block) ([]byte, []byte, error) {
	config := block.Config
	if config == nil {
		config = block.Type.EmptyConfig()
	}

	configJSON := []byte("{}")

	if config != nil {
		var err error

		configJSON, err = json.Marshal(config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal config of block %s: %w", block.ID, err)
		}
	}

	connections := block.Connections
	if connections == nil {
		connections = []string{}
	}

	connectionsJSON, err := json.Marshal(connections)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal connections of block %s: %w", block.ID, err)
	}

	return configJSON, connectionsJSON, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
