package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/store"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, sender_id, recipient_id, note_id, role, status, sent_at, accepted_at`

func scanInvite(row rowScanner) (domain.Invite, error) {
	var (
		inv          domain.Invite
		role, status string
		sentAt       int64
		acceptedAt   sql.NullInt64
	)
	err := row.Scan(&inv.ID, &inv.SenderID, &inv.RecipientID, &inv.NoteID, &role, &status,
		&sentAt, &acceptedAt)
	if err != nil {
		return domain.Invite{}, err
	}
	inv.Role = domain.Role(role)
	if inv.Status, err = domain.ParseInviteStatus(status); err != nil {
		return domain.Invite{}, fmt.Errorf("invite %s: %w", inv.ID, err)
	}
	inv.SentAt = fromMillis(sentAt)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (`+inviteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.SenderID, inv.RecipientID, inv.NoteID, string(inv.Role), string(inv.Status),
		toMillis(inv.SentAt), mapOptionalTime(inv.AcceptedAt),
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInvite(ctx context.Context, id string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id)
	inv, err := scanInvite(row)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) FindInvites(ctx context.Context, f store.InviteFilter) ([]domain.Invite, error) {
	var (
		where []string
		args  []any
	)
	if f.NoteID != "" {
		where = append(where, "note_id = ?")
		args = append(args, f.NoteID)
	}
	if f.SenderID != "" {
		where = append(where, "sender_id = ?")
		args = append(args, f.SenderID)
	}
	if f.RecipientID != "" {
		where = append(where, "recipient_id = ?")
		args = append(args, f.RecipientID)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}

	query := `SELECT ` + inviteColumns + ` FROM invites`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	// ULIDs sort by creation time, which breaks ties within a millisecond.
	query += ` ORDER BY sent_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitesRepo) TransitionInvite(
	ctx context.Context,
	inv domain.Invite,
	from domain.InviteStatus,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invites SET status = ?, accepted_at = ? WHERE id = ? AND status = ?`,
		string(inv.Status), mapOptionalTime(inv.AcceptedAt), inv.ID, string(from),
	)
	return requireRow(res, err, store.ErrStale)
}
