package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE automations (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				template_id VARCHAR(255),
				owner VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_automations_owner ON automations(owner);
			CREATE INDEX idx_automations_created_at ON automations(created_at);
			CREATE INDEX idx_automations_deleted_at ON automations(deleted_at);

			CREATE TABLE automation_blocks (
				automation_id VARCHAR(64) NOT NULL REFERENCES automations(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				ordinal INT NOT NULL,
				block_type VARCHAR(64) NOT NULL,
				category VARCHAR(16) NOT NULL CHECK (category IN ('trigger', 'condition', 'action')),
				position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
				position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
				configured BOOLEAN NOT NULL DEFAULT false,
				config JSONB NOT NULL DEFAULT '{}',
				connections JSONB NOT NULL DEFAULT '[]',
				PRIMARY KEY (automation_id, id)
			);

			CREATE INDEX idx_automation_blocks_type ON automation_blocks(block_type);
		`,
	}
}
