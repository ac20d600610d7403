package store

import (
	"context"
	"fmt"
)

func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, display_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return User{}, fmt.Errorf("create user: %w", mapErr(err))
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, created_at
		 FROM users WHERE email = $1`, email)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
		return User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, created_at
		 FROM users WHERE id = $1`, id)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
		return User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) CreateProject(ctx context.Context, p Project) (Project, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO projects (id, name, owner_id, width, height)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.OwnerID, p.Width, p.Height)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return Project{}, fmt.Errorf("create project: %w", mapErr(err))
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (Project, error) {
	var p Project
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, width, height, created_at, updated_at
		 FROM projects WHERE id = $1`, id)
	if err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.Width, &p.Height, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Project{}, mapErr(err)
	}
	return p, nil
}

func (s *Store) ListProjectsForUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.name, p.owner_id, p.width, p.height, p.created_at, p.updated_at
		 FROM projects p
		 JOIN project_members m ON m.project_id = p.id
		 WHERE m.user_id = $1
		 ORDER BY p.updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.Width, &p.Height, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func (s *Store) AddMember(ctx context.Context, projectID, userID string, role Role) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (project_id, user_id) DO NOTHING`,
		projectID, userID, role)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Store) GetMember(ctx context.Context, projectID, userID string) (Member, error) {
	var m Member
	row := s.pool.QueryRow(ctx,
		`SELECT m.project_id, m.user_id, m.role, u.display_name, u.email
		 FROM project_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.project_id = $1 AND m.user_id = $2`, projectID, userID)
	if err := row.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.DisplayName, &m.Email); err != nil {
		return Member{}, mapErr(err)
	}
	return m, nil
}

func (s *Store) ListMembers(ctx context.Context, projectID string) ([]Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.project_id, m.user_id, m.role, u.display_name, u.email
		 FROM project_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.project_id = $1
		 ORDER BY u.display_name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.DisplayName, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) RemoveMember(ctx context.Context, projectID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	return err
}

// CreateSnapshot appends a new document version for a project and touches
// the project's updated_at.
func (s *Store) CreateSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO scene_snapshots (id, project_id, version, document)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		snap.ID, snap.ProjectID, snap.Version, snap.Document)
	if err := row.Scan(&snap.CreatedAt); err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: %w", mapErr(err))
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE projects SET updated_at = now() WHERE id = $1`, snap.ProjectID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("touch project: %w", err)
	}
	return snap, nil
}

func (s *Store) LatestSnapshot(ctx context.Context, projectID string) (Snapshot, error) {
	var snap Snapshot
	row := s.pool.QueryRow(ctx,
		`SELECT id, project_id, version, document, created_at
		 FROM scene_snapshots
		 WHERE project_id = $1
		 ORDER BY version DESC
		 LIMIT 1`, projectID)
	if err := row.Scan(&snap.ID, &snap.ProjectID, &snap.Version, &snap.Document, &snap.CreatedAt); err != nil {
		return Snapshot{}, mapErr(err)
	}
	return snap, nil
}
