package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/tourdesk/store"
)

func (d *DB) CreateTourBooking(ctx context.Context, create *store.TourBooking) (*store.TourBooking, error) {
	fields := []string{
		"uid", "event_id", "summary", "start_ts", "end_ts",
		"customer_name", "customer_email", "zpid", "html_link",
	}
	values := []any{
		create.UID, create.EventID, create.Summary, create.StartTs, create.EndTs,
		create.CustomerName, create.CustomerEmail, create.Zpid, create.HTMLLink,
	}
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		values = append(values, create.CreatedTs)
	}

	stmt := `INSERT INTO tour_booking (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(values)) + `)
		RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, values...).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to create tour booking: %w", err)
	}
	return create, nil
}

func (d *DB) ListTourBookings(ctx context.Context, find *store.FindTourBooking) ([]*store.TourBooking, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.EventID; v != nil {
		where, args = append(where, "event_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, event_id, summary, start_ts, end_ts,
			customer_name, customer_email, zpid, html_link, created_ts
		FROM tour_booking
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tour bookings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.TourBooking, 0)
	for rows.Next() {
		var b store.TourBooking
		if err := rows.Scan(
			&b.ID,
			&b.UID,
			&b.EventID,
			&b.Summary,
			&b.StartTs,
			&b.EndTs,
			&b.CustomerName,
			&b.CustomerEmail,
			&b.Zpid,
			&b.HTMLLink,
			&b.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tour booking: %w", err)
		}
		list = append(list, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tour bookings: %w", err)
	}
	return list, nil
}
