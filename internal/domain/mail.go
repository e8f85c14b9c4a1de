package domain

// Mail is a single outbound message. From is left empty to use the
// configured sender account.
type Mail struct {
	From    string
	To      string
	Subject string
	Body    string
}
