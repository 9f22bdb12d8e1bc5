package requestresponse

import (
	"safe-return-server/internal/model"
	"time"
)

// SignUpRequest : тело запроса регистрации участника
type SignUpRequest struct {
	ID       string `json:"id" example:"u1"`
	Password string `json:"password" example:"P@ssw0rd!"`
	Name     string `json:"name" example:"Kim"`
	Phone    string `json:"phone" example:"010-1234-5678"`
}

// MemberResponse : данные участника для JSON ответа
type MemberResponse struct {
	AccountNumber   int64  `json:"account_number" example:"1"`
	ID              string `json:"id" example:"u1"`
	Name            string `json:"name" example:"Kim"`
	Phone           string `json:"phone" example:"010-1234-5678"`
	HasProfileImage bool   `json:"has_profile_image" example:"false"`
	CreatedAt       string `json:"created" example:"2025-08-23T12:34:56Z"`
}

// MemberResponseFromModel : конвертирует model.Member в MemberResponse
func MemberResponseFromModel(member *model.Member) MemberResponse {
	return MemberResponse{
		AccountNumber:   member.ID,
		ID:              member.ExternalID,
		Name:            member.Name,
		Phone:           member.Phone,
		HasProfileImage: member.ProfileImageKey != nil,
		CreatedAt:       member.CreatedAt.Format(time.RFC3339),
	}
}

// ProfileImageResponse : presigned ссылка на изображение профиля
type ProfileImageResponse struct {
	URL       string `json:"url" example:"https://s3.example.com/profiles/1/abc?X-Amz-Signature=..."`
	ExpiresIn int    `json:"expires_in" example:"900"`
}

// ListMembersResponse : страница участников
type ListMembersResponse struct {
	Data struct {
		Members    []MemberResponse `json:"members"`
		NextCursor string           `json:"next_cursor,omitempty"`
	} `json:"data"`
}
