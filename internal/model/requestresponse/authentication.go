package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	ID       *string `json:"id" example:"u1"`
	Password *string `json:"password" example:"P@ssw0rd123"`
}

// MessageResponse : информационный ответ без данных
type MessageResponse struct {
	Message string `json:"message" example:"access token reissued successfully"`
}

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code int    `json:"code" example:"401"`
	Text string `json:"text" example:"access_expired"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
