// Package model はドメインモデルを定義する。
package model

// Task はToDoタスクを表す。
// Titleは空白のみの文字列を許可しない。Descriptionは保存時に必ず非nilとなる。
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

// TaskStatus はタスクの進行状態を表す。
type TaskStatus string

const (
	// StatusPending は未着手状態。作成直後のタスクは必ずこの状態になる。
	StatusPending TaskStatus = "Pending"
	// StatusInProgress は作業中状態。
	StatusInProgress TaskStatus = "InProgress"
	// StatusCompleted は完了状態。
	StatusCompleted TaskStatus = "Completed"
)

// statusDisplayNames は各ステータスの表示名のルックアップテーブル。
// APIの表示名はリファレンス実装のポルトガル語表記を維持する。
var statusDisplayNames = map[TaskStatus]string{
	StatusPending:    "Pendente",
	StatusInProgress: "Em Andamento",
	StatusCompleted:  "Concluída",
}

// DisplayName はステータスの表示名を返す。
// 未知のステータスにはステータス値そのものを返す。
func (s TaskStatus) DisplayName() string {
	if name, ok := statusDisplayNames[s]; ok {
		return name
	}
	return string(s)
}

// Valid はステータスが定義済みの値かどうかを返す。
func (s TaskStatus) Valid() bool {
	_, ok := statusDisplayNames[s]
	return ok
}

// ParseTaskStatus は文字列をTaskStatusに変換する。
// 定義外の値の場合はfalseを返す。
func ParseTaskStatus(s string) (TaskStatus, bool) {
	status := TaskStatus(s)
	return status, status.Valid()
}
