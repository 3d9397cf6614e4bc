// Package model はドメインモデルを定義する。
package model

import "time"

// DefaultUserRole は登録時に付与されるロール。
const DefaultUserRole = "User"

// User はサービス利用ユーザーを表す。
// PasswordHashにはbcryptでソルト付きハッシュ化されたパスワードのみを保持し、
// 平文パスワードは一切保存しない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
