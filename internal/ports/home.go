package ports

// HomeLocator finds the roulette config root starting from an arbitrary directory.
type HomeLocator interface {
	FindRoot(startDir string) (string, error)
}

// HomeInitializer scaffolds a config root.
type HomeInitializer interface {
	Init(root string, force bool) error
}
