package users

const (
	querySave = `
		INSERT INTO users (email, password, nickname)
		VALUES ($1, $2, $3)
		RETURNING id, email, password, nickname, created_at, updated_at
	`

	queryFindByID = `
		SELECT id, email, password, nickname, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT id, email, password, nickname, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	queryFindOrCreateByEmail = `
		INSERT INTO users (email, nickname)
		VALUES ($1, $2)
		ON CONFLICT (email)
		DO UPDATE SET
			nickname = COALESCE(EXCLUDED.nickname, users.nickname),
			updated_at = NOW()
		RETURNING id, email, password, nickname, created_at, updated_at
	`

	queryUpdateNickname = `
		UPDATE users
		SET nickname = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, email, password, nickname, created_at, updated_at
	`
)
