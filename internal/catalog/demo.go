package catalog

import "github.com/priceparty/priceparty-server/internal/game"

// DemoProducts is a small built-in catalog so the server is playable without
// a scraped database. Prices are period snapshots, not live data.
var DemoProducts = []game.Product{
	{ID: "kk-1", Name: "Stand mixer, 5L bowl", Price: 399.00, ImageURL: "https://img.example/kk/mixer.jpg", Provider: "kk"},
	{ID: "kk-2", Name: "Cordless vacuum cleaner", Price: 279.95, ImageURL: "https://img.example/kk/vacuum.jpg", Provider: "kk"},
	{ID: "kk-3", Name: "Espresso machine with grinder", Price: 549.00, ImageURL: "https://img.example/kk/espresso.jpg", Provider: "kk"},
	{ID: "kk-4", Name: "Air fryer XL", Price: 129.99, ImageURL: "https://img.example/kk/airfryer.jpg", Provider: "kk"},
	{ID: "kk-5", Name: "Robot lawn mower", Price: 899.00, ImageURL: "https://img.example/kk/mower.jpg", Provider: "kk"},
	{ID: "kk-6", Name: "Electric kettle, 1.7L", Price: 34.95, ImageURL: "https://img.example/kk/kettle.jpg", Provider: "kk"},
	{ID: "kk-7", Name: "Sous vide stick", Price: 89.00, ImageURL: "https://img.example/kk/sousvide.jpg", Provider: "kk"},
	{ID: "temu-1", Name: "LED strip lights, 10m", Price: 12.48, ImageURL: "https://img.example/temu/led.jpg", Provider: "temu"},
	{ID: "temu-2", Name: "Phone tripod with remote", Price: 8.99, ImageURL: "https://img.example/temu/tripod.jpg", Provider: "temu"},
	{ID: "temu-3", Name: "Wireless earbuds", Price: 15.73, ImageURL: "https://img.example/temu/earbuds.jpg", Provider: "temu"},
	{ID: "temu-4", Name: "Cable organizer set", Price: 4.29, ImageURL: "https://img.example/temu/cables.jpg", Provider: "temu"},
	{ID: "temu-5", Name: "Mini projector", Price: 47.80, ImageURL: "https://img.example/temu/projector.jpg", Provider: "temu"},
	{ID: "temu-6", Name: "Magnetic screwdriver kit", Price: 11.64, ImageURL: "https://img.example/temu/screwdriver.jpg", Provider: "temu"},
	{ID: "temu-7", Name: "Desk lamp with USB port", Price: 18.55, ImageURL: "https://img.example/temu/lamp.jpg", Provider: "temu"},
	{ID: "dec-1", Name: "Trekking backpack, 50L", Price: 79.99, ImageURL: "https://img.example/decathlon/backpack.jpg", Provider: "decathlon"},
	{ID: "dec-2", Name: "Camping tent, 2 person", Price: 49.99, ImageURL: "https://img.example/decathlon/tent.jpg", Provider: "decathlon"},
	{ID: "dec-3", Name: "Road bike helmet", Price: 34.99, ImageURL: "https://img.example/decathlon/helmet.jpg", Provider: "decathlon"},
	{ID: "dec-4", Name: "Running shoes", Price: 64.99, ImageURL: "https://img.example/decathlon/shoes.jpg", Provider: "decathlon"},
	{ID: "dec-5", Name: "Dumbbell set, 20kg", Price: 89.99, ImageURL: "https://img.example/decathlon/dumbbells.jpg", Provider: "decathlon"},
	{ID: "dec-6", Name: "Yoga mat, 8mm", Price: 24.99, ImageURL: "https://img.example/decathlon/yogamat.jpg", Provider: "decathlon"},
	{ID: "dec-7", Name: "Inflatable kayak", Price: 249.99, ImageURL: "https://img.example/decathlon/kayak.jpg", Provider: "decathlon"},
}
