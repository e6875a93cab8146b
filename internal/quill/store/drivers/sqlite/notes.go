package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/domain"
	"github.com/aussiebroadwan/quill/internal/quill/store"
)

type notesRepo struct {
	db dbtx
}

const noteColumns = `id, owner_id, title, content, favorite, trashed, trashed_at, created_at, updated_at`

func scanNote(row rowScanner) (domain.Note, error) {
	var (
		n                    domain.Note
		trashedAt            sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.Favorite, &n.Trashed,
		&trashedAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.Note{}, err
	}
	n.TrashedAt = mapNullTimePtr(trashedAt)
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	return n, nil
}

func (r *notesRepo) GetNote(ctx context.Context, id string) (domain.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}

	perms, err := r.loadPermissions(ctx, []string{n.ID})
	if err != nil {
		return domain.Note{}, err
	}
	n.Permissions = perms[n.ID]
	return n, nil
}

func (r *notesRepo) ListNotesForUser(
	ctx context.Context,
	userID string,
	trashed bool,
) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE trashed = ?
		   AND (owner_id = ? OR id IN (SELECT note_id FROM note_permissions WHERE user_id = ?))
		 ORDER BY updated_at DESC, id DESC`,
		trashed, userID, userID,
	)
	if err != nil {
		return nil, err
	}

	var (
		notes []domain.Note
		ids   []string
	)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		notes = append(notes, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// Release the cursor before the next query; the pool holds one connection.
	_ = rows.Close()

	perms, err := r.loadPermissions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i].Permissions = perms[notes[i].ID]
	}
	return notes, nil
}

func (r *notesRepo) loadPermissions(
	ctx context.Context,
	noteIDs []string,
) (map[string][]domain.PermissionEntry, error) {
	out := make(map[string][]domain.PermissionEntry, len(noteIDs))
	if len(noteIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(noteIDs))
	for i, id := range noteIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT note_id, user_id, role FROM note_permissions
		 WHERE note_id IN (`+placeholders(len(noteIDs))+`)
		 ORDER BY note_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var noteID, userID, role string
		if err := rows.Scan(&noteID, &userID, &role); err != nil {
			return nil, err
		}
		out[noteID] = append(out[noteID], domain.PermissionEntry{UserID: userID, Role: domain.Role(role)})
	}
	return out, rows.Err()
}

func (r *notesRepo) CreateNote(ctx context.Context, n domain.Note) error {
	now := time.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.OwnerID, n.Title, n.Content, n.Favorite, n.Trashed,
		mapOptionalTime(n.TrashedAt), toMillis(n.CreatedAt), toMillis(n.UpdatedAt),
	)
	if err != nil {
		return mapConstraint(err)
	}
	if len(n.Permissions) > 0 {
		return r.SavePermissions(ctx, n)
	}
	return nil
}

func (r *notesRepo) UpdateNote(ctx context.Context, n domain.Note) error {
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes
		 SET title = ?, content = ?, favorite = ?, trashed = ?, trashed_at = ?, updated_at = ?
		 WHERE id = ?`,
		n.Title, n.Content, n.Favorite, n.Trashed, mapOptionalTime(n.TrashedAt),
		toMillis(n.UpdatedAt), n.ID,
	)
	return requireRow(res, err, store.ErrNotFound)
}

// SavePermissions rewrites the whole ledger for the note. Callers run it in a
// transaction together with whatever invite change motivated it.
func (r *notesRepo) SavePermissions(ctx context.Context, n domain.Note) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM note_permissions WHERE note_id = ?`, n.ID); err != nil {
		return err
	}
	for i, p := range n.Permissions {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO note_permissions (note_id, user_id, role, position) VALUES (?, ?, ?, ?)`,
			n.ID, p.UserID, string(p.Role), i,
		)
		if err != nil {
			return mapConstraint(err)
		}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE notes SET updated_at = ? WHERE id = ?`, toMillis(time.Now()), n.ID)
	return err
}

func (r *notesRepo) DeleteNote(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	return requireRow(res, err, store.ErrNotFound)
}

func (r *notesRepo) PurgeTrashedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE trashed = 1 AND trashed_at IS NOT NULL AND trashed_at < ?`,
		toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
