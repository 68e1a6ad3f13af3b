package model

type Profile struct {
	ID        string
	FullName  string
	Email     string
	PushToken string
	Notify    bool
}
