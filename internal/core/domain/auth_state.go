package domain

// AuthState is the client-side snapshot of authentication status.
type AuthState struct {
	IsAuthenticated bool  `json:"is_authenticated"`
	User            *User `json:"user"`
	IsLoading       bool  `json:"is_loading"`
}

// InitialAuthState is the state before the first refresh has completed.
func InitialAuthState() AuthState {
	return AuthState{IsLoading: true}
}
