package shows

// CreateShowRequest schedules one screening of a catalog movie
type CreateShowRequest struct {
	CatalogMovieID int64  `json:"catalog_movie_id" binding:"required"`
	StartTime      string `json:"start_time" binding:"required"` // RFC 3339
	Price          int64  `json:"price" binding:"required,gt=0"` // minor units
}
