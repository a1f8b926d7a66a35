package api

import "time"

// Document is the backend's view of an uploaded document.
// Content is only populated when the backend chose to include it.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Content   string    `json:"content,omitempty"`
}

// AnswerChunk is one passage returned for a question.
type AnswerChunk struct {
	Content          string `json:"content"`
	SourceDocumentID string `json:"source_document_id"`
	SourceTitle      string `json:"source_title"`
}

// User is the profile returned by the auth service.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Role           string `json:"role,omitempty"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// TokenPair is returned by the refresh endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type queryRequest struct {
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
}

type queryResult struct {
	Content  string `json:"content"`
	Metadata struct {
		DocumentID string `json:"document_id"`
		Title      string `json:"title"`
	} `json:"metadata"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
}

type createDocumentRequest struct {
	Title        string `json:"title"`
	ParseContent string `json:"parse_content"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registrationRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	Name      string `json:"name"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}
