package articles

const (
	queryCreate = `
		INSERT INTO articles (title, content, author)
		VALUES ($1, $2, $3)
		RETURNING id, title, content, author, created_at, updated_at
	`

	queryCount = `
		SELECT COUNT(*) FROM articles
	`

	queryList = `
		SELECT id, title, content, author, created_at, updated_at
		FROM articles
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	queryGet = `
		SELECT id, title, content, author, created_at, updated_at
		FROM articles
		WHERE id = $1
	`

	queryUpdate = `
		UPDATE articles
		SET title = $1, content = $2, updated_at = NOW()
		WHERE id = $3 AND author = $4
		RETURNING id, title, content, author, created_at, updated_at
	`

	queryDelete = `
		DELETE FROM articles
		WHERE id = $1 AND author = $2
	`
)
