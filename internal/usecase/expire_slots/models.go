package expire_slots

import "time"

// Request запрос на закрытие прошедших слотов
type Request struct {
	// Before слоты с днём строго раньше. Пусто - сегодня минус grace days.
	Before time.Time
	// Limit размер страницы, 0 - значение по умолчанию
	Limit int
}

// Response отчёт
type Response struct {
	Before  time.Time
	Expired int
	Failed  int
}
