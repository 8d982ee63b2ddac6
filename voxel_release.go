//go:build !voxel_debug

package voxel

const debugging = false

func assert(bool, string) {}
