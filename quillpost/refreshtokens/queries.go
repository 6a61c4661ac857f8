package refreshtokens

const (
	queryPut = `
		INSERT INTO refresh_tokens (user_id, token_hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			updated_at = NOW()
	`

	queryFindByTokenHash = `
		SELECT id, user_id, token_hash, updated_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	queryDeleteByUserID = `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
	`

	queryDeleteUpdatedBefore = `
		DELETE FROM refresh_tokens
		WHERE updated_at < $1
	`
)
