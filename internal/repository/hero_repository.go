package repository

import (
	"context"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/store"
)

type HeroRepo struct{ S store.Store }

func NewHeroRepo(s store.Store) *HeroRepo { return &HeroRepo{S: s} }

// Get returns the hero. The first read persists and returns the default.
func (r *HeroRepo) Get(ctx context.Context) (model.Hero, error) {
	var out model.Hero
	err := store.UpdateJSON(ctx, r.S, keyHero, func(cur *model.Hero) (*model.Hero, error) {
		if cur == nil {
			d := model.DefaultHero()
			cur = &d
		}
		out = *cur
		return cur, nil
	})
	return out, err
}

// Put replaces the hero.
func (r *HeroRepo) Put(ctx context.Context, h model.Hero) error {
	return store.SetJSON(ctx, r.S, keyHero, h)
}
