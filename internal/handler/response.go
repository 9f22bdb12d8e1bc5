package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"safe-return-server/internal/model/requestresponse"
)

func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Handler] ошибка записи ответа: %v", err)
	}
}
