package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - ключ, по которому храним *gorm.DB (пул или транзакцию) в context
const DBContextKey = contextKey("db")
