//go:build !voxel_debug

package block

const debugging = false

func assert(bool, string) {}
