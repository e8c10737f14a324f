package dto

import "github.com/Aazukvid2000/Pyxolotl/internal/model"

type AdminUserQuery struct {
	Skip     int   `query:"skip"`
	Limit    int   `query:"limit"`
	Verified *bool `query:"verificado"`
}

type AdminGameQuery struct {
	Skip        int             `query:"skip"`
	Limit       int             `query:"limit"`
	State       model.GameState `query:"estado"`
	DeveloperID uint            `query:"desarrollador_id"`
}

type AdminStats struct {
	TotalUsers     int64 `json:"total_usuarios"`
	VerifiedUsers  int64 `json:"usuarios_verificados"`
	TotalGames     int64 `json:"total_juegos"`
	ApprovedGames  int64 `json:"juegos_aprobados"`
	TotalOrders    int64 `json:"total_compras"`
	TotalDownloads int64 `json:"total_descargas"`
}

type AdminUser struct {
	ID          uint              `json:"id"`
	Name        string            `json:"nombre"`
	Email       string            `json:"email"`
	AccountType model.AccountType `json:"tipo_cuenta"`
	Verified    bool              `json:"verificado"`
	GameCount   int64             `json:"num_juegos"`
	OrderCount  int64             `json:"num_compras"`
}

type AdminGame struct {
	ID            uint            `json:"id"`
	Title         string          `json:"titulo"`
	DeveloperName string          `json:"desarrollador_nombre"`
	Price         float64         `json:"precio"`
	State         model.GameState `json:"estado"`
	Downloads     int             `json:"total_descargas"`
	ReviewCount   int64           `json:"total_resenas"`
}

// DeleteResponse reports what a cascading deletion actually removed,
// including on partial-failure paths.
type DeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RowsDeleted  int64  `json:"registros_eliminados"`
	FilesDeleted int    `json:"archivos_eliminados"`
}
