package models

import "github.com/uptrace/bun"

type CatalogCharacter struct {
	bun.BaseModel `bun:"table:catalog_characters,alias:cc"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Series string `bun:"series,notnull,unique:catalog_series_name"`
	Name   string `bun:"name,notnull,unique:catalog_series_name"`
}
