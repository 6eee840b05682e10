package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/pictoria/pictoria/internal/model"
)

// Common errors for image repository operations.
var (
	ErrImageNotFound = errors.New("image not found")
)

// InsertImage inserts a new generated image row and populates the
// record's ID and CreatedAt from the database.
func (r *Repository) InsertImage(ctx context.Context, img *model.ImageRecord) error {
	query := `
		INSERT INTO generated_images (user_id, url, prompt, model, aspect_ratio, guidance, num_inference_steps, output_format, image_name, tags, is_favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		img.UserID,
		img.URL,
		img.Prompt,
		img.Model,
		img.AspectRatio,
		img.Guidance,
		img.NumInferenceSteps,
		img.OutputFormat,
		img.ImageName,
		pq.Array(img.Tags),
		img.IsFavorite,
	).Scan(&img.ID, &img.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}

	return nil
}

// GetImageByID retrieves an image owned by the given user.
func (r *Repository) GetImageByID(ctx context.Context, userID string, id int64) (*model.ImageRecord, error) {
	query := `
		SELECT id, user_id, url, prompt, model, aspect_ratio, guidance, num_inference_steps, output_format, image_name, tags, is_favorite, created_at
		FROM generated_images
		WHERE id = $1 AND user_id = $2
	`

	img, err := scanImage(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image by ID: %w", err)
	}

	return img, nil
}

// ListImages retrieves all of a user's images, newest first.
func (r *Repository) ListImages(ctx context.Context, userID string) ([]*model.ImageRecord, error) {
	query := `
		SELECT id, user_id, url, prompt, model, aspect_ratio, guidance, num_inference_steps, output_format, image_name, tags, is_favorite, created_at
		FROM generated_images
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	return r.queryImages(ctx, query, userID)
}

// ListImagesByTag retrieves a user's images carrying the given tag,
// newest first. Uses the array containment operator so a GIN index on
// tags applies.
func (r *Repository) ListImagesByTag(ctx context.Context, userID, tag string) ([]*model.ImageRecord, error) {
	query := `
		SELECT id, user_id, url, prompt, model, aspect_ratio, guidance, num_inference_steps, output_format, image_name, tags, is_favorite, created_at
		FROM generated_images
		WHERE user_id = $1 AND tags @> $2
		ORDER BY created_at DESC, id DESC
	`

	return r.queryImages(ctx, query, userID, pq.Array([]string{tag}))
}

// UpdateImage applies a partial patch to an image owned by the user and
// returns the updated row.
func (r *Repository) UpdateImage(ctx context.Context, userID string, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
	if patch.IsEmpty() {
		return r.GetImageByID(ctx, userID, id)
	}

	sets := make([]string, 0, 3)
	args := []any{id, userID}
	argIndex := 3

	if patch.ImageName != nil {
		sets = append(sets, fmt.Sprintf("image_name = $%d", argIndex))
		args = append(args, *patch.ImageName)
		argIndex++
	}

	if patch.Tags != nil {
		sets = append(sets, fmt.Sprintf("tags = $%d", argIndex))
		args = append(args, pq.Array(*patch.Tags))
		argIndex++
	}

	if patch.IsFavorite != nil {
		sets = append(sets, fmt.Sprintf("is_favorite = $%d", argIndex))
		args = append(args, *patch.IsFavorite)
		argIndex++
	}

	query := fmt.Sprintf(`
		UPDATE generated_images
		SET %s
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, url, prompt, model, aspect_ratio, guidance, num_inference_steps, output_format, image_name, tags, is_favorite, created_at
	`, strings.Join(sets, ", "))

	img, err := scanImage(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to update image: %w", err)
	}

	return img, nil
}

// DeleteImage removes an image owned by the user.
func (r *Repository) DeleteImage(ctx context.Context, userID string, id int64) error {
	query := `DELETE FROM generated_images WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrImageNotFound
	}

	return nil
}

// DistinctTags returns the user's tag vocabulary: every distinct tag
// across the user's images, sorted ascending.
func (r *Repository) DistinctTags(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT unnest(tags) AS tag
		FROM generated_images
		WHERE user_id = $1
		ORDER BY tag
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

func (r *Repository) queryImages(ctx context.Context, query string, args ...any) ([]*model.ImageRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var images []*model.ImageRecord
	for rows.Next() {
		img, err := scanImageFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// scanImage scans a single row into an ImageRecord.
func scanImage(row pgx.Row) (*model.ImageRecord, error) {
	var img model.ImageRecord
	var tags []string

	err := row.Scan(
		&img.ID,
		&img.UserID,
		&img.URL,
		&img.Prompt,
		&img.Model,
		&img.AspectRatio,
		&img.Guidance,
		&img.NumInferenceSteps,
		&img.OutputFormat,
		&img.ImageName,
		pq.Array(&tags),
		&img.IsFavorite,
		&img.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	img.Tags = tags
	return &img, nil
}

// scanImageFromRows scans a row from pgx.Rows into an ImageRecord.
func scanImageFromRows(rows pgx.Rows) (*model.ImageRecord, error) {
	var img model.ImageRecord
	var tags []string

	err := rows.Scan(
		&img.ID,
		&img.UserID,
		&img.URL,
		&img.Prompt,
		&img.Model,
		&img.AspectRatio,
		&img.Guidance,
		&img.NumInferenceSteps,
		&img.OutputFormat,
		&img.ImageName,
		pq.Array(&tags),
		&img.IsFavorite,
		&img.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	img.Tags = tags
	return &img, nil
}
