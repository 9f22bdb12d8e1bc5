package util

import (
	"fmt"
	"log"
)

// LogError : пишет сообщение с ошибкой в лог и возвращает её обёрнутой
func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}
