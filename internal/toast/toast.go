package toast

import "log"

// Notifier доставляет пользователю неблокирующие уведомления.
// Заменяет всплывающие сообщения веб-клиента.
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// LogNotifier выводит уведомления в журнал, используется терминальным клиентом
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Success(message string) {
	log.Printf("[успех] %s", message)
}

func (n *LogNotifier) Info(message string) {
	log.Printf("[инфо] %s", message)
}

func (n *LogNotifier) Error(message string) {
	log.Printf("[ошибка] %s", message)
}
