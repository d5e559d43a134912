package usecase

import "github.com/aalvaropc/roulette/internal/ports"

type InitHome struct {
	initializer ports.HomeInitializer
}

func NewInitHome(initializer ports.HomeInitializer) *InitHome {
	return &InitHome{initializer: initializer}
}

func (uc *InitHome) Execute(root string, force bool) error {
	return uc.initializer.Init(root, force)
}
