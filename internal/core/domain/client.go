package domain

// Client is a customer the freelancer works for.
type Client struct {
	ID            int64  `json:"id" bson:"_id"`
	Name          string `json:"name" bson:"name"`
	Email         string `json:"email" bson:"email"`
	ContactPerson string `json:"contact_person" bson:"contact_person"`
}

// String is the representation stored in audit records.
func (c Client) String() string {
	return c.Name
}
