package models

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type LoanStatus string

const (
	StatusBorrowed LoanStatus = "dipinjam"
	StatusReturned LoanStatus = "dikembalikan"
)

// Session is the identity the backing API returned at login or registration.
type Session struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Item is a barang. CategoryID may point at a category that no longer exists.
type Item struct {
	ID         ID     `json:"id,omitempty"`
	Name       string `json:"nama"`
	CategoryID ID     `json:"kategori_id"`
	Stock      int    `json:"stok"`
	CreatedAt  Date   `json:"created_at"`
	Status     string `json:"status,omitempty"`
}

type Category struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"nama"`
	Description string `json:"deskripsi"`
}

type Loan struct {
	ID            ID         `json:"id,omitempty"`
	BorrowerName  string     `json:"nama_peminjam"`
	BorrowerEmail string     `json:"email_peminjam"`
	BorrowerPhone string     `json:"telepon_peminjam"`
	ItemID        ID         `json:"barang_id"`
	Quantity      int        `json:"jumlah"`
	Status        LoanStatus `json:"status"`
	BorrowedAt    Date       `json:"tanggal_pinjam"`

	// Present on report rows only.
	Item     *Item     `json:"barang_info,omitempty"`
	Category *Category `json:"kategori_info,omitempty"`
}
