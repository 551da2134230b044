package models

import "encoding/json"

// Destination - группа или канал, куда бот выдает приглашение.
// AccessRef - ссылка-приглашение или идентификатор чата, в зависимости от режима; по нему проверяются дубликаты.
type Destination struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required,max=64"`
	AccessRef string `json:"access_ref" validate:"required"`
}

// UnmarshalJSON принимает старое поле invite_link вместо access_ref.
func (d *Destination) UnmarshalJSON(b []byte) error {
	type destinationAlias Destination
	var raw struct {
		destinationAlias
		InviteLink string `json:"invite_link"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Destination(raw.destinationAlias)
	if d.AccessRef == "" {
		d.AccessRef = raw.InviteLink
	}
	return nil
}
