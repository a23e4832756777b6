package main

import (
	"fmt"
	"log/slog"

	"heliscene/internal/config"
	"heliscene/internal/graphics"
	"heliscene/internal/helicopter"
	"heliscene/internal/mesh"
	"heliscene/internal/render"

	"github.com/go-gl/mathgl/mgl32"
)

// setupScene runs on the render thread once the context is current.
func setupScene(cfg config.Config, logger *slog.Logger) (*render.Resources, error) {
	shader, err := graphics.NewShader(cfg.Assets.VertexShader, cfg.Assets.FragmentShader)
	if err != nil {
		return nil, fmt.Errorf("build shader: %w", err)
	}

	terrain, err := mesh.LoadTerrain(cfg.Assets.Terrain, cfg.Scene.TerrainColor)
	if err != nil {
		return nil, fmt.Errorf("load terrain: %w", err)
	}
	heli, err := mesh.LoadHelicopter(cfg.Assets.Helicopter, mesh.HelicopterColors{
		Body:      cfg.Scene.BodyColor,
		MainRotor: cfg.Scene.MainRotorColor,
		TailRotor: cfg.Scene.TailRotorColor,
		Door:      cfg.Scene.DoorColor,
	})
	if err != nil {
		return nil, fmt.Errorf("load helicopter: %w", err)
	}

	rig, err := helicopter.Assemble(helicopter.Parts{
		Terrain:   graphics.Upload(terrain),
		Body:      graphics.Upload(heli.Body),
		Door:      graphics.Upload(heli.Door),
		MainRotor: graphics.Upload(heli.MainRotor),
		TailRotor: graphics.Upload(heli.TailRotor),
	}, helicopter.Settings{
		RotorSpeed:     cfg.Scene.RotorSpeed,
		Altitude:       cfg.Scene.Altitude,
		TailRotorPivot: mgl32.Vec3(cfg.Scene.TailRotorPivot),
	})
	if err != nil {
		return nil, err
	}
	if err := graphics.CheckError("upload scene"); err != nil {
		return nil, err
	}

	triangles := 0
	for _, m := range []mesh.Mesh{terrain, heli.Body, heli.Door, heli.MainRotor, heli.TailRotor} {
		triangles += len(m.Indices) / 3
	}
	logger.Info("scene ready", "nodes", rig.Graph.Len(), "triangles", triangles)

	return &render.Resources{
		Program:  shader,
		Drawer:   graphics.Drawer{Shader: shader},
		Graph:    rig.Graph,
		Root:     rig.Root,
		Animator: rig,
		Release:  shader.Delete,
	}, nil
}
