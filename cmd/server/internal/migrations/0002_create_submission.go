package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0002, Down0002)
}

func Up0002(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE submission (
    id BIGINT PRIMARY KEY,
    challenge_id BIGINT NOT NULL REFERENCES challenge (id),
    submitter_id BIGINT NOT NULL,
    category TEXT NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT false,
    purchased BOOLEAN NOT NULL DEFAULT false,
    passed_screening BOOLEAN DEFAULT NULL,
    original_path TEXT NOT NULL DEFAULT '',
    original_name TEXT NOT NULL DEFAULT '',
    preview_path TEXT NOT NULL DEFAULT '',
    preview_name TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp
);

CREATE INDEX submission_challenge_id_idx ON submission (challenge_id);
CREATE INDEX submission_submitter_id_idx ON submission (challenge_id, submitter_id);
`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
CREATE TABLE submission_image (
    id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    submission_id BIGINT NOT NULL REFERENCES submission (id),
    image_type_id INT NOT NULL,
    file_index INT NOT NULL DEFAULT 1,
    path TEXT NOT NULL,
    file_name TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp
);

CREATE INDEX submission_image_submission_id_idx ON submission_image (submission_id);
`)
	if err != nil {
		return err
	}

	return nil
}

func Down0002(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE submission_image; DROP TABLE submission;`)
	if err != nil {
		return err
	}

	return nil
}
