package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/missionconf/server/internal/domain/contact"
	"github.com/missionconf/server/internal/domain/ids"
	"github.com/missionconf/server/internal/metrics"
)

var _ contact.Repository = (*ContactRepository)(nil)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func (r *ContactRepository) Create(ctx context.Context, msg contact.Message) (_ *contact.Message, err error) {
	defer func(start time.Time) { metrics.RecordQuery("insert_contact_message", start, err) }(time.Now())

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	var (
		created contact.Message
		phone   *string
	)
	err = r.pool.QueryRow(ctx, `
INSERT INTO contact_messages (id, first_name, last_name, email, phone, message, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, first_name, last_name, email, phone, message, sent_at, read, replied, notified
`,
		id, msg.FirstName, msg.LastName, msg.Email, nullableString(msg.Phone), msg.Message, msg.SentAt,
	).Scan(
		&created.ID,
		&created.FirstName,
		&created.LastName,
		&created.Email,
		&phone,
		&created.Message,
		&created.SentAt,
		&created.Read,
		&created.Replied,
		&created.Notified,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact message: %w", err)
	}
	created.Phone = derefString(phone)
	created.SentAt = created.SentAt.UTC()
	return &created, nil
}

func (r *ContactRepository) MarkNotified(ctx context.Context, id, notificationID string) (err error) {
	defer func(start time.Time) { metrics.RecordQuery("mark_contact_notified", start, err) }(time.Now())

	tag, err := r.pool.Exec(ctx, `
UPDATE contact_messages
   SET notified = true,
       notification_id = $2
 WHERE id = $1
`, id, nullableString(notificationID))
	if err != nil {
		return fmt.Errorf("mark contact message notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}
