package tool

import (
	"github.com/m-mizutani/libris/pkg/repository"
	"github.com/m-mizutani/libris/pkg/service/recommend"
)

// Client contains shared resources that tools can use
type Client struct {
	Catalog      *repository.Catalog
	Interactions *repository.Interactions
	Encoder      recommend.Encoder
}
